package wallet

import (
	"context"

	"creda/internal/models"
)

// Service defines the wallet operations exposed to the API layer.
type Service interface {
	// GetWallet returns the account snapshot, creating a zero-balance
	// account on first access.
	GetWallet(ctx context.Context, accountID string) (*models.Account, error)

	// ListTransactions returns one page of the account's ledger history,
	// most recent first, plus the total entry count.
	ListTransactions(ctx context.Context, accountID string, page, pageSize int) ([]models.Transaction, int64, error)

	// RedeemCard converts a prepaid code into credits. Exactly one
	// concurrent redeemer of a code succeeds.
	RedeemCard(ctx context.Context, accountID, code string) (*RedeemResult, error)

	// Spend debits the account; the balance-sufficiency check happens
	// inside the same atomic mutation.
	Spend(ctx context.Context, accountID string, amount int64, relatedEntityID, description string) (*SpendResult, error)

	// Refund reverses a prior spend exactly once.
	Refund(ctx context.Context, accountID, transactionID string) (*RefundResult, error)

	// AdminAdjust applies a signed administrative balance correction.
	AdminAdjust(ctx context.Context, accountID string, amount int64, description string) (*AdjustResult, error)
}

// CacheOperator is the wallet snapshot cache.
type CacheOperator interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	CacheAccount(ctx context.Context, account *models.Account) error
	InvalidateAccount(ctx context.Context, accountID string) error
}

// Locker provides per-account mutual exclusion. The returned release
// function must be called on every exit path.
type Locker interface {
	Acquire(ctx context.Context, accountID string) (func(), error)
}
