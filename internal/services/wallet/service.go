package wallet

import (
	"context"

	errs "creda/internal/errors"
	"creda/internal/models"
	"creda/internal/repositories"
	"creda/internal/services/guard"

	"go.uber.org/zap"
)

type service struct {
	ledger  repositories.LedgerRepository
	cards   repositories.CardRepository
	txm     repositories.TxManager
	cache   CacheOperator
	locker  Locker
	limiter guard.RateLimiter
}

// NewService creates a wallet service. The ledger, card repository, and
// locker are required. When txm is non-nil, card claim and balance credit
// share one storage transaction (the preferred design); when nil, the
// service falls back to best-effort compensation. Cache and limiter are
// optional.
func NewService(
	ledger repositories.LedgerRepository,
	cards repositories.CardRepository,
	txm repositories.TxManager,
	cache CacheOperator,
	locker Locker,
	limiter guard.RateLimiter,
) Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	if cards == nil {
		panic("card repository is required")
	}
	if locker == nil {
		panic("account locker is required")
	}
	return &service{
		ledger:  ledger,
		cards:   cards,
		txm:     txm,
		cache:   cache,
		locker:  locker,
		limiter: limiter,
	}
}

func (s *service) GetWallet(ctx context.Context, accountID string) (*models.Account, error) {
	if s.cache != nil {
		if account, err := s.cache.GetAccount(ctx, accountID); err == nil && account != nil {
			return account, nil
		}
	}

	account, err := s.ledger.GetOrCreateAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheAccount(ctx, account); err != nil {
			zap.L().Warn("failed to cache account snapshot", zap.Error(err))
		}
	}
	return account, nil
}

func (s *service) ListTransactions(ctx context.Context, accountID string, page, pageSize int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.ledger.ListTransactions(ctx, accountID, pageSize, (page-1)*pageSize)
}

func (s *service) RedeemCard(ctx context.Context, accountID, code string) (*RedeemResult, error) {
	code = models.NormalizeCode(code)
	if code == "" {
		return nil, errs.ErrInvalidCode
	}

	// Throttle before taking the lock: rejected attempts must not queue
	// behind legitimate operations.
	if s.limiter != nil {
		allowed, retryAfter, err := s.limiter.Allow(ctx, redeemRateScope+":"+accountID)
		if err != nil {
			zap.L().Warn("rate limiter check failed", zap.Error(err))
		} else if !allowed {
			return nil, errs.ErrRateLimited.WithRetryAfter(retryAfter)
		}
	}

	release, err := s.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		card *models.RedeemableCard
		txn  *models.Transaction
	)
	if s.txm != nil {
		err = s.txm.WithinTransaction(ctx, func(ledger repositories.LedgerRepository, cardRepo repositories.CardRepository) error {
			c, err := cardRepo.MarkUsed(ctx, code, accountID)
			if err != nil {
				return err
			}
			t, err := ledger.ApplyMutation(ctx, s.rechargeMutation(accountID, c))
			if err != nil {
				return err
			}
			card, txn = c, t
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		card, txn, err = s.redeemWithCompensation(ctx, accountID, code)
		if err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, accountID)
	zap.L().Info("card redeemed",
		zap.String("account_id", accountID),
		zap.String("code", card.Code),
		zap.Int64("credit_amount", card.CreditAmount),
	)
	return &RedeemResult{
		Code:          card.Code,
		CreditAmount:  card.CreditAmount,
		NewBalance:    txn.BalanceAfter,
		TransactionID: txn.ID,
	}, nil
}

// redeemWithCompensation claims the card and credits the balance as two
// separate writes, reverting the claim best-effort when the credit fails.
// Used only when the registry and the ledger cannot share a transaction.
func (s *service) redeemWithCompensation(ctx context.Context, accountID, code string) (*models.RedeemableCard, *models.Transaction, error) {
	card, err := s.cards.MarkUsed(ctx, code, accountID)
	if err != nil {
		return nil, nil, err
	}

	txn, err := s.ledger.ApplyMutation(ctx, s.rechargeMutation(accountID, card))
	if err != nil {
		if revErr := s.cards.RevertToActive(ctx, code, accountID); revErr != nil {
			zap.L().Error("card revert failed after ledger error, manual reconciliation needed",
				zap.String("account_id", accountID),
				zap.String("code", code),
				zap.Error(revErr),
			)
		}
		return nil, nil, errs.ErrRedemptionFailed
	}
	return card, txn, nil
}

func (s *service) rechargeMutation(accountID string, card *models.RedeemableCard) repositories.Mutation {
	m := repositories.Mutation{
		AccountID:       accountID,
		Amount:          card.CreditAmount,
		Type:            models.TransactionTypeRecharge,
		RelatedEntityID: card.Code,
		Description:     "Prepaid card redemption",
	}
	if card.BatchName != "" {
		m.Metadata = models.NewJSON(map[string]interface{}{"batch": card.BatchName})
	}
	return m
}

func (s *service) Spend(ctx context.Context, accountID string, amount int64, relatedEntityID, description string) (*SpendResult, error) {
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	release, err := s.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	txn, err := s.ledger.ApplyMutation(ctx, repositories.Mutation{
		AccountID:       accountID,
		Amount:          -amount,
		Type:            models.TransactionTypePurchase,
		RelatedEntityID: relatedEntityID,
		Description:     description,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, accountID)
	return &SpendResult{TransactionID: txn.ID, NewBalance: txn.BalanceAfter}, nil
}

func (s *service) Refund(ctx context.Context, accountID, transactionID string) (*RefundResult, error) {
	release, err := s.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	orig, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if orig.AccountID != accountID {
		// Do not reveal other accounts' transaction ids.
		return nil, errs.ErrNotFound
	}
	if orig.Type != models.TransactionTypePurchase {
		return nil, errs.ErrInvalidOperation
	}

	refunded, err := s.ledger.HasRefund(ctx, orig.ID)
	if err != nil {
		return nil, err
	}
	if refunded {
		return nil, errs.ErrInvalidOperation
	}

	txn, err := s.ledger.ApplyMutation(ctx, repositories.Mutation{
		AccountID:       accountID,
		Amount:          -orig.Amount,
		Type:            models.TransactionTypeRefund,
		RelatedEntityID: orig.ID,
		Description:     "Refund of purchase",
		Metadata:        models.NewJSON(map[string]interface{}{"refunded_entity": orig.RelatedEntityID}),
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, accountID)
	zap.L().Info("spend refunded",
		zap.String("account_id", accountID),
		zap.String("original_transaction_id", orig.ID),
		zap.Int64("amount", -orig.Amount),
	)
	return &RefundResult{TransactionID: txn.ID, NewBalance: txn.BalanceAfter}, nil
}

func (s *service) AdminAdjust(ctx context.Context, accountID string, amount int64, description string) (*AdjustResult, error) {
	if amount == 0 {
		return nil, errs.ErrInvalidAmount
	}

	release, err := s.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	txn, err := s.ledger.ApplyMutation(ctx, repositories.Mutation{
		AccountID:   accountID,
		Amount:      amount,
		Type:        models.TransactionTypeAdminAdjustment,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, accountID)
	return &AdjustResult{TransactionID: txn.ID, NewBalance: txn.BalanceAfter}, nil
}

func (s *service) invalidate(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAccount(ctx, accountID); err != nil {
		zap.L().Warn("failed to invalidate account cache",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}
}
