package dto

type CreateAccountRequest struct {
	Username string `json:"username"`
}

type WithdrawalRequest struct {
	AccountID     string `json:"accountId"`
	AmountKobo    int64  `json:"amount_kobo"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}
