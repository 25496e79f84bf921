package models

import (
	"time"
)

// Transaction types
const (
	TransactionTypeRecharge        = "RECHARGE"
	TransactionTypePurchase        = "PURCHASE"
	TransactionTypeRefund          = "REFUND"
	TransactionTypeAdminAdjustment = "ADMIN_ADJUSTMENT"
)

// Transaction is one immutable ledger entry. Amount is signed: positive
// entries credit the account, negative entries debit it. Rows are append
// only; BalanceAfter == BalanceBefore + Amount holds for every row.
type Transaction struct {
	ID              string    `gorm:"primarykey" json:"transaction_id"`
	AccountID       string    `gorm:"not null;index:idx_transactions_account_created,priority:1" json:"account_id"`
	Type            string    `gorm:"not null" json:"type"`
	Amount          int64     `gorm:"not null" json:"amount"`
	BalanceBefore   int64     `gorm:"not null" json:"balance_before"`
	BalanceAfter    int64     `gorm:"not null" json:"balance_after"`
	RelatedEntityID string    `gorm:"index" json:"related_entity_id,omitempty"`
	Description     string    `json:"description,omitempty"`
	Metadata        JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time `gorm:"index:idx_transactions_account_created,priority:2" json:"created_at"`
}
