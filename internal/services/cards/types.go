package cards

// GenerateBatchRequest describes one administrative batch generation.
type GenerateBatchRequest struct {
	CreditAmount  int64
	Quantity      int
	ExpiresInDays int
	BatchName     string
	CreatedBy     string
}

// Batch size and expiry bounds.
const (
	MaxBatchSize      = 100
	DefaultExpiryDays = 365

	// maxGenerateAttempts bounds collision-retry rounds during code
	// generation.
	maxGenerateAttempts = 5
)
