package repositories

import (
	"context"
	"errors"
	"time"

	errs "creda/internal/errors"
	"creda/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCASAttempts = 3

// errVersionConflict signals an optimistic-lock miss; retried internally.
var errVersionConflict = errors.New("account version conflict")

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a ledger repository on top of the given
// gorm handle, which may be a transaction.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetOrCreateAccount(ctx context.Context, accountID string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("get account", err)
	}

	account = models.Account{ID: accountID}
	if createErr := r.db.WithContext(ctx).Create(&account).Error; createErr != nil {
		// A concurrent first access may have created the row already;
		// re-read to keep get-or-create idempotent.
		if readErr := r.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error; readErr != nil {
			return nil, storageError("create account", createErr)
		}
	}
	return &account, nil
}

func (r *ledgerRepository) ApplyMutation(ctx context.Context, m Mutation) (*models.Transaction, error) {
	if m.Amount == 0 {
		return nil, errs.ErrInvalidAmount
	}

	var created *models.Transaction
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		created = nil
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txRepo := &ledgerRepository{db: tx}
			account, err := txRepo.GetOrCreateAccount(ctx, m.AccountID)
			if err != nil {
				return err
			}

			balanceAfter := account.Balance + m.Amount
			if balanceAfter < 0 {
				return errs.ErrInsufficientBalance
			}

			earned, spent := account.TotalEarned, account.TotalSpent
			if m.Amount > 0 {
				earned += m.Amount
			} else {
				spent += -m.Amount
			}

			res := tx.Model(&models.Account{}).
				Where("id = ? AND version = ?", account.ID, account.Version).
				Updates(map[string]interface{}{
					"balance":      balanceAfter,
					"total_earned": earned,
					"total_spent":  spent,
					"version":      account.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}

			txn := &models.Transaction{
				ID:              uuid.NewString(),
				AccountID:       account.ID,
				Type:            m.Type,
				Amount:          m.Amount,
				BalanceBefore:   account.Balance,
				BalanceAfter:    balanceAfter,
				RelatedEntityID: m.RelatedEntityID,
				Description:     m.Description,
				Metadata:        m.Metadata,
			}
			if err := tx.Create(txn).Error; err != nil {
				return err
			}
			created = txn
			return nil
		})

		if err == nil {
			return created, nil
		}
		if errors.Is(err, errVersionConflict) {
			zap.L().Debug("ledger version conflict, retrying",
				zap.String("account_id", m.AccountID),
				zap.Int("attempt", attempt+1),
			)
			time.Sleep(casBackoff(attempt))
			continue
		}
		var de *errs.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, storageError("apply mutation", err)
	}

	return nil, errs.ErrConcurrentUpdateConflict
}

func (r *ledgerRepository) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", transactionID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, storageError("get transaction", err)
	}
	return &txn, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	if err != nil {
		return nil, 0, storageError("count transactions", err)
	}

	var txns []models.Transaction
	err = r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, 0, storageError("list transactions", err)
	}
	return txns, total, nil
}

func (r *ledgerRepository) HasRefund(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("type = ? AND related_entity_id = ?", models.TransactionTypeRefund, transactionID).
		Count(&count).Error
	if err != nil {
		return false, storageError("check refund", err)
	}
	return count > 0, nil
}

func casBackoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * 25 * time.Millisecond
}

// storageError logs the underlying cause and returns the generic
// retryable kind; internal error text never reaches a client.
func storageError(op string, err error) error {
	zap.L().Error("storage operation failed", zap.String("op", op), zap.Error(err))
	return errs.ErrStorageUnavailable
}
