package repositories

import (
	"context"
	"errors"

	errs "creda/internal/errors"

	"gorm.io/gorm"
)

// TxManager runs a function against transaction-scoped ledger and card
// repositories, committing both or neither. It lets the wallet service
// claim a card and credit the balance as one atomic unit.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ledger LedgerRepository, cards CardRepository) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager over the given database handle.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(ledger LedgerRepository, cards CardRepository) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLedgerRepository(tx), NewCardRepository(tx))
	})
	if err == nil {
		return nil
	}
	var de *errs.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return storageError("transactional unit", err)
}
