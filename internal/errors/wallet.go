package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a positive number of credits",
	}
	ErrInvalidOperation = &DomainError{
		Code:    "INVALID_OPERATION",
		Message: "operation not permitted for this transaction",
	}
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "requested resource not found",
	}
	ErrConcurrentUpdateConflict = &DomainError{
		Code:    "CONCURRENT_UPDATE_CONFLICT",
		Message: "wallet was modified concurrently, please retry",
	}
	ErrStorageUnavailable = &DomainError{
		Code:    "STORAGE_UNAVAILABLE",
		Message: "service temporarily unavailable, please try again",
	}
	ErrRedemptionFailed = &DomainError{
		Code:    "REDEMPTION_FAILED",
		Message: "card redemption could not be completed, no credits were charged",
	}
)
