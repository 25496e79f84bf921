package repositories

import (
	"context"

	"creda/internal/models"
)

// CardRepository is the durable registry of redeemable codes. MarkUsed is
// the concurrency control point preventing double redemption: it is a
// single conditional update, so exactly one concurrent caller can win.
type CardRepository interface {
	// CreateBatch inserts freshly generated cards.
	CreateBatch(ctx context.Context, cards []*models.RedeemableCard) error

	// FilterExisting returns which of the given codes are already taken.
	FilterExisting(ctx context.Context, codes []string) (map[string]struct{}, error)

	// Lookup fetches a card by normalized code, lazily flipping it to
	// EXPIRED when its expiry has passed. Absent codes fail ErrInvalidCode.
	Lookup(ctx context.Context, code string) (*models.RedeemableCard, error)

	// MarkUsed transitions the card ACTIVE -> USED for the given account.
	// It fails ErrCardAlreadyUsed or ErrCardExpired when the card is not
	// currently redeemable.
	MarkUsed(ctx context.Context, code, accountID string) (*models.RedeemableCard, error)

	// RevertToActive undoes a MarkUsed by the same account; used by the
	// compensation path when the ledger credit cannot share the card
	// claim's transaction.
	RevertToActive(ctx context.Context, code, accountID string) error

	// List returns cards filtered by batch name and/or status.
	List(ctx context.Context, batchName, status string, limit, offset int) ([]models.RedeemableCard, int64, error)
}
