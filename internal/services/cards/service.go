// Package cards manages the lifecycle of redeemable prepaid codes:
// administrative batch generation and registry queries. Redemption-time
// state transitions live in the card repository so the wallet service can
// compose them with ledger writes.
package cards

import (
	"context"
	"time"

	errs "creda/internal/errors"
	"creda/internal/models"
	"creda/internal/repositories"

	"go.uber.org/zap"
)

// Service is the card registry's administrative surface.
type Service interface {
	// GenerateBatch creates a bounded batch of unique active cards.
	GenerateBatch(ctx context.Context, req GenerateBatchRequest) ([]models.RedeemableCard, error)

	// Lookup fetches a single card by code.
	Lookup(ctx context.Context, code string) (*models.RedeemableCard, error)

	// List returns cards filtered by batch and/or status.
	List(ctx context.Context, batchName, status string, limit, offset int) ([]models.RedeemableCard, int64, error)
}

type service struct {
	repo repositories.CardRepository
}

// NewService creates a card registry service.
func NewService(repo repositories.CardRepository) Service {
	if repo == nil {
		panic("card repository is required")
	}
	return &service{repo: repo}
}

func (s *service) GenerateBatch(ctx context.Context, req GenerateBatchRequest) ([]models.RedeemableCard, error) {
	if req.Quantity < 1 || req.Quantity > MaxBatchSize {
		return nil, ErrInvalidBatchSize
	}
	if req.CreditAmount <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if req.ExpiresInDays == 0 {
		req.ExpiresInDays = DefaultExpiryDays
	}
	if req.ExpiresInDays < 0 {
		return nil, ErrInvalidExpiry
	}

	codes, err := s.uniqueCodes(ctx, req.Quantity)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().AddDate(0, 0, req.ExpiresInDays)
	batch := make([]*models.RedeemableCard, 0, len(codes))
	for _, code := range codes {
		batch = append(batch, &models.RedeemableCard{
			Code:         code,
			CreditAmount: req.CreditAmount,
			Status:       models.CardStatusActive,
			ExpiresAt:    expiresAt,
			CreatedBy:    req.CreatedBy,
			BatchName:    req.BatchName,
		})
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	zap.L().Info("card batch generated",
		zap.String("batch", req.BatchName),
		zap.Int("quantity", len(batch)),
		zap.Int64("credit_amount", req.CreditAmount),
	)

	cards := make([]models.RedeemableCard, 0, len(batch))
	for _, c := range batch {
		cards = append(cards, *c)
	}
	return cards, nil
}

// uniqueCodes generates the requested number of codes, re-rolling any
// that collide with existing registry entries or with each other.
func (s *service) uniqueCodes(ctx context.Context, quantity int) ([]string, error) {
	seen := make(map[string]struct{}, quantity)
	codes := make([]string, 0, quantity)

	for attempt := 0; attempt < maxGenerateAttempts && len(codes) < quantity; attempt++ {
		candidates := make([]string, 0, quantity-len(codes))
		for len(candidates) < quantity-len(codes) {
			code, err := generateCode()
			if err != nil {
				return nil, errs.ErrStorageUnavailable
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			candidates = append(candidates, code)
		}

		taken, err := s.repo.FilterExisting(ctx, candidates)
		if err != nil {
			return nil, err
		}
		for _, code := range candidates {
			if _, exists := taken[code]; exists {
				delete(seen, code)
				continue
			}
			codes = append(codes, code)
		}
	}

	if len(codes) < quantity {
		return nil, ErrCodeSpaceExhausted
	}
	return codes, nil
}

func (s *service) Lookup(ctx context.Context, code string) (*models.RedeemableCard, error) {
	return s.repo.Lookup(ctx, code)
}

func (s *service) List(ctx context.Context, batchName, status string, limit, offset int) ([]models.RedeemableCard, int64, error) {
	return s.repo.List(ctx, batchName, status, limit, offset)
}
