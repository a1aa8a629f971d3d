package events

type TicketPlaced struct {
	TicketID  string `json:"ticket_id"`
	AccountID string `json:"account_id"`
	RoundID   string `json:"round_id"`
	StakeKobo int64  `json:"stake_kobo"`
	Reference string `json:"reference"` // external_ref do débito de stake na carteira
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
