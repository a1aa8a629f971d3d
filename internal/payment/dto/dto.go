package dto

type InitiateDepositRequest struct {
	AccountID  string `json:"accountId"`
	AmountKobo int64  `json:"amount_kobo"`
}

type InitiateDepositResponse struct {
	Reference string `json:"reference"`
}

type ReconcileResponse struct {
	Credited    bool  `json:"credited"`
	BalanceKobo int64 `json:"balance_kobo"`
}
