package events

type DepositCredited struct {
	Reference   string `json:"reference"`
	AccountID   string `json:"account_id"`
	AmountKobo  int64  `json:"amount_kobo"`
	BalanceKobo int64  `json:"balance_kobo"` // saldo após o crédito
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
