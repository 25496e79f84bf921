package repositories

import (
	"context"
	"errors"
	"time"

	errs "creda/internal/errors"
	"creda/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a card registry on top of the given gorm
// handle, which may be a transaction.
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) CreateBatch(ctx context.Context, cards []*models.RedeemableCard) error {
	if len(cards) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(cards).Error; err != nil {
		return storageError("create card batch", err)
	}
	return nil
}

func (r *cardRepository) FilterExisting(ctx context.Context, codes []string) (map[string]struct{}, error) {
	if len(codes) == 0 {
		return map[string]struct{}{}, nil
	}
	var existing []string
	err := r.db.WithContext(ctx).
		Model(&models.RedeemableCard{}).
		Where("code IN ?", codes).
		Pluck("code", &existing).Error
	if err != nil {
		return nil, storageError("filter existing codes", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, code := range existing {
		taken[code] = struct{}{}
	}
	return taken, nil
}

func (r *cardRepository) Lookup(ctx context.Context, code string) (*models.RedeemableCard, error) {
	code = models.NormalizeCode(code)

	var card models.RedeemableCard
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInvalidCode
		}
		return nil, storageError("lookup card", err)
	}

	if card.Status == models.CardStatusActive && time.Now().After(card.ExpiresAt) {
		r.expire(ctx, code)
		card.Status = models.CardStatusExpired
	}
	return &card, nil
}

func (r *cardRepository) MarkUsed(ctx context.Context, code, accountID string) (*models.RedeemableCard, error) {
	code = models.NormalizeCode(code)
	now := time.Now()

	res := r.db.WithContext(ctx).
		Model(&models.RedeemableCard{}).
		Where("code = ? AND status = ? AND expires_at > ?", code, models.CardStatusActive, now).
		Updates(map[string]interface{}{
			"status":  models.CardStatusUsed,
			"used_by": accountID,
			"used_at": now,
		})
	if res.Error != nil {
		return nil, storageError("mark card used", res.Error)
	}

	if res.RowsAffected == 0 {
		// Lost the conditional update; read the card to report why.
		card, err := r.Lookup(ctx, code)
		if err != nil {
			return nil, err
		}
		switch card.Status {
		case models.CardStatusUsed:
			return nil, errs.ErrCardAlreadyUsed
		case models.CardStatusExpired:
			return nil, errs.ErrCardExpired
		default:
			// ACTIVE but past expiry: Lookup already flipped it.
			return nil, errs.ErrCardExpired
		}
	}

	var card models.RedeemableCard
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&card).Error; err != nil {
		return nil, storageError("reload card", err)
	}
	return &card, nil
}

func (r *cardRepository) RevertToActive(ctx context.Context, code, accountID string) error {
	code = models.NormalizeCode(code)

	res := r.db.WithContext(ctx).
		Model(&models.RedeemableCard{}).
		Where("code = ? AND status = ? AND used_by = ?", code, models.CardStatusUsed, accountID).
		Updates(map[string]interface{}{
			"status":  models.CardStatusActive,
			"used_by": nil,
			"used_at": nil,
		})
	if res.Error != nil {
		return storageError("revert card", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *cardRepository) List(ctx context.Context, batchName, status string, limit, offset int) ([]models.RedeemableCard, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RedeemableCard{})
	if batchName != "" {
		query = query.Where("batch_name = ?", batchName)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count cards", err)
	}

	var cards []models.RedeemableCard
	err := query.
		Order("created_at DESC, code DESC").
		Limit(limit).
		Offset(offset).
		Find(&cards).Error
	if err != nil {
		return nil, 0, storageError("list cards", err)
	}
	return cards, total, nil
}

// expire lazily flips an overdue card; best effort, the conditional
// guard in MarkUsed does not depend on it.
func (r *cardRepository) expire(ctx context.Context, code string) {
	err := r.db.WithContext(ctx).
		Model(&models.RedeemableCard{}).
		Where("code = ? AND status = ?", code, models.CardStatusActive).
		Update("status", models.CardStatusExpired).Error
	if err != nil {
		zap.L().Warn("failed to expire card lazily", zap.Error(err))
	}
}
