package cards

import errs "creda/internal/errors"

var (
	ErrInvalidBatchSize = &errs.DomainError{
		Code:    "INVALID_BATCH_SIZE",
		Message: "quantity must be between 1 and 100",
	}
	ErrInvalidExpiry = &errs.DomainError{
		Code:    "INVALID_EXPIRY",
		Message: "expiry must be a positive number of days",
	}
	ErrCodeSpaceExhausted = &errs.DomainError{
		Code:    "CODE_GENERATION_FAILED",
		Message: "could not generate unique card codes, please retry",
	}
)
