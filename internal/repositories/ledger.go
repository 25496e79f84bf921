package repositories

import (
	"context"

	"creda/internal/models"
)

// Mutation describes one balance change to apply atomically.
type Mutation struct {
	AccountID       string
	Amount          int64
	Type            string
	RelatedEntityID string
	Description     string
	Metadata        models.JSON
}

// LedgerRepository is the durable store of account balances and the
// append-only transaction log. Balance reads-then-writes never happen
// outside ApplyMutation.
type LedgerRepository interface {
	// GetOrCreateAccount returns the account, creating a zero-balance
	// one on first access.
	GetOrCreateAccount(ctx context.Context, accountID string) (*models.Account, error)

	// ApplyMutation atomically adjusts the balance and appends exactly
	// one transaction row. It fails with ErrInsufficientBalance when the
	// mutation would drive the balance negative, and with
	// ErrConcurrentUpdateConflict after exhausting internal retries on
	// version conflicts.
	ApplyMutation(ctx context.Context, m Mutation) (*models.Transaction, error)

	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	// ListTransactions returns the account's history most-recent-first
	// with a stable (created_at, id) ordering, plus the total row count.
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error)

	// HasRefund reports whether a REFUND entry referencing the given
	// transaction already exists.
	HasRefund(ctx context.Context, transactionID string) (bool, error)
}
