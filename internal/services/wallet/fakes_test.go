package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	errs "creda/internal/errors"
	"creda/internal/models"
	"creda/internal/repositories"

	"github.com/google/uuid"
)

// fakeLedger is an in-memory LedgerRepository enforcing the same
// atomicity guarantees as the real one.
type fakeLedger struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	txns     []models.Transaction
	failNext error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{accounts: make(map[string]*models.Account)}
}

func (f *fakeLedger) getOrCreateLocked(accountID string) *models.Account {
	account, ok := f.accounts[accountID]
	if !ok {
		account = &models.Account{ID: accountID, CreatedAt: time.Now()}
		f.accounts[accountID] = account
	}
	return account
}

func (f *fakeLedger) GetOrCreateAccount(ctx context.Context, accountID string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	account := *f.getOrCreateLocked(accountID)
	return &account, nil
}

func (f *fakeLedger) ApplyMutation(ctx context.Context, m repositories.Mutation) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	if m.Amount == 0 {
		return nil, errs.ErrInvalidAmount
	}

	account := f.getOrCreateLocked(m.AccountID)
	after := account.Balance + m.Amount
	if after < 0 {
		return nil, errs.ErrInsufficientBalance
	}

	txn := models.Transaction{
		ID:              uuid.NewString(),
		AccountID:       m.AccountID,
		Type:            m.Type,
		Amount:          m.Amount,
		BalanceBefore:   account.Balance,
		BalanceAfter:    after,
		RelatedEntityID: m.RelatedEntityID,
		Description:     m.Description,
		Metadata:        m.Metadata,
		CreatedAt:       time.Now(),
	}

	account.Balance = after
	if m.Amount > 0 {
		account.TotalEarned += m.Amount
	} else {
		account.TotalSpent += -m.Amount
	}
	account.Version++
	f.txns = append(f.txns, txn)
	return &txn, nil
}

func (f *fakeLedger) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.txns {
		if f.txns[i].ID == transactionID {
			txn := f.txns[i]
			return &txn, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeLedger) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []models.Transaction
	for _, txn := range f.txns {
		if txn.AccountID == accountID {
			all = append(all, txn)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeLedger) HasRefund(ctx context.Context, transactionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, txn := range f.txns {
		if txn.Type == models.TransactionTypeRefund && txn.RelatedEntityID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

// account returns a copy of the stored account for assertions.
func (f *fakeLedger) account(accountID string) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return models.Account{ID: accountID}
	}
	return *account
}

func (f *fakeLedger) transactionsOf(accountID string, txType string) []models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, txn := range f.txns {
		if txn.AccountID == accountID && (txType == "" || txn.Type == txType) {
			out = append(out, txn)
		}
	}
	return out
}

// fakeCards is an in-memory CardRepository with the real conditional
// MarkUsed semantics.
type fakeCards struct {
	mu    sync.Mutex
	cards map[string]*models.RedeemableCard
}

func newFakeCards() *fakeCards {
	return &fakeCards{cards: make(map[string]*models.RedeemableCard)}
}

func (f *fakeCards) add(card models.RedeemableCard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[card.Code] = &card
}

func (f *fakeCards) get(code string) models.RedeemableCard {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.cards[models.NormalizeCode(code)]
}

func (f *fakeCards) CreateBatch(ctx context.Context, cards []*models.RedeemableCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, card := range cards {
		c := *card
		f.cards[c.Code] = &c
	}
	return nil
}

func (f *fakeCards) FilterExisting(ctx context.Context, codes []string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	taken := make(map[string]struct{})
	for _, code := range codes {
		if _, ok := f.cards[code]; ok {
			taken[code] = struct{}{}
		}
	}
	return taken, nil
}

func (f *fakeCards) Lookup(ctx context.Context, code string) (*models.RedeemableCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[models.NormalizeCode(code)]
	if !ok {
		return nil, errs.ErrInvalidCode
	}
	if card.Status == models.CardStatusActive && time.Now().After(card.ExpiresAt) {
		card.Status = models.CardStatusExpired
	}
	copied := *card
	return &copied, nil
}

func (f *fakeCards) MarkUsed(ctx context.Context, code, accountID string) (*models.RedeemableCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[models.NormalizeCode(code)]
	if !ok {
		return nil, errs.ErrInvalidCode
	}
	if card.Status == models.CardStatusUsed {
		return nil, errs.ErrCardAlreadyUsed
	}
	if card.Status == models.CardStatusExpired || time.Now().After(card.ExpiresAt) {
		card.Status = models.CardStatusExpired
		return nil, errs.ErrCardExpired
	}
	now := time.Now()
	card.Status = models.CardStatusUsed
	card.UsedBy = &accountID
	card.UsedAt = &now
	copied := *card
	return &copied, nil
}

func (f *fakeCards) RevertToActive(ctx context.Context, code, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[models.NormalizeCode(code)]
	if !ok || card.Status != models.CardStatusUsed || card.UsedBy == nil || *card.UsedBy != accountID {
		return errs.ErrNotFound
	}
	card.Status = models.CardStatusActive
	card.UsedBy = nil
	card.UsedAt = nil
	return nil
}

func (f *fakeCards) List(ctx context.Context, batchName, status string, limit, offset int) ([]models.RedeemableCard, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RedeemableCard
	for _, card := range f.cards {
		if batchName != "" && card.BatchName != batchName {
			continue
		}
		if status != "" && card.Status != status {
			continue
		}
		out = append(out, *card)
	}
	return out, int64(len(out)), nil
}

// fakeTxManager runs the function against the shared fakes. The fakes
// apply each write atomically, which is sufficient for these tests; the
// rollback path is exercised through the compensation-mode service.
type fakeTxManager struct {
	ledger *fakeLedger
	cards  *fakeCards
}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(repositories.LedgerRepository, repositories.CardRepository) error) error {
	return fn(f.ledger, f.cards)
}

// fakeCache records snapshot and invalidation traffic.
type fakeCache struct {
	mu            sync.Mutex
	accounts      map[string]*models.Account
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{accounts: make(map[string]*models.Account)}
}

func (f *fakeCache) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[accountID]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCache) CacheAccount(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeCache) InvalidateAccount(ctx context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, accountID)
	f.invalidations++
	return nil
}

// denyLimiter rejects every attempt with a fixed retry-after.
type denyLimiter struct {
	retryAfter int
}

func (d *denyLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	return false, d.retryAfter, nil
}
