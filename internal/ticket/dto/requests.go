package dto

type SelectionInput struct {
	MatchID          string `json:"match_id"`
	PredictedOutcome string `json:"predicted_outcome"`
}

type PlaceBetRequest struct {
	AccountID  string           `json:"accountId"`
	RoundID    string           `json:"roundId"`
	Selections []SelectionInput `json:"selections"`
}
