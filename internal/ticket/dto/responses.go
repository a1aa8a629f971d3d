package dto

type PlaceBetResponse struct {
	TicketID  string `json:"ticketId"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type SelectionResult struct {
	MatchID          string `json:"match_id"`
	PredictedOutcome string `json:"predicted_outcome"`
	Correct          *bool  `json:"correct,omitempty"` // ausente enquanto pendente
}

type TicketResponse struct {
	TicketID   string            `json:"ticketId"`
	AccountID  string            `json:"accountId"`
	RoundID    string            `json:"roundId"`
	StakeKobo  int64             `json:"stake_kobo"`
	Verdict    string            `json:"verdict"` // pending | won | lost
	Selections []SelectionResult `json:"selections"`
}

type TicketSummary struct {
	TicketID  string `json:"ticketId"`
	AccountID string `json:"accountId"`
	RoundID   string `json:"roundId"`
	Verdict   string `json:"verdict"`
	CreatedAt string `json:"created_at"`
}
