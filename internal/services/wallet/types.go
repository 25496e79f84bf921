package wallet

// RedeemResult reports a committed card redemption.
type RedeemResult struct {
	Code          string `json:"code"`
	CreditAmount  int64  `json:"credit_amount"`
	NewBalance    int64  `json:"new_balance"`
	TransactionID string `json:"transaction_id"`
}

// SpendResult reports a committed debit.
type SpendResult struct {
	TransactionID string `json:"transaction_id"`
	NewBalance    int64  `json:"new_balance"`
}

// RefundResult reports a committed refund of a prior spend.
type RefundResult struct {
	TransactionID string `json:"transaction_id"`
	NewBalance    int64  `json:"new_balance"`
}

// AdjustResult reports a committed administrative adjustment.
type AdjustResult struct {
	TransactionID string `json:"transaction_id"`
	NewBalance    int64  `json:"new_balance"`
}
