package dto

type AccountResponse struct {
	AccountID string `json:"accountId"`
}

type BalanceResponse struct {
	AccountID   string `json:"accountId"`
	BalanceKobo int64  `json:"balance_kobo"`
}

type TxnResponse struct {
	DeltaKobo int64  `json:"delta_kobo"`
	Kind      string `json:"kind"`
	Reference string `json:"reference,omitempty"`
	CreatedAt string `json:"created_at"`
}

type WithdrawalResponse struct {
	WithdrawalID string `json:"withdrawalId"`
	AmountKobo   int64  `json:"amount_kobo"`
	Status       string `json:"status"`
}

type WithdrawalListItem struct {
	WithdrawalID  string `json:"withdrawalId"`
	AccountID     string `json:"accountId"`
	AmountKobo    int64  `json:"amount_kobo"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}
