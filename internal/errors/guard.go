package errors

var (
	ErrAccountBusy = &DomainError{
		Code:    "ACCOUNT_BUSY",
		Message: "another wallet operation is in progress, please retry",
	}
	ErrRateLimited = &DomainError{
		Code:    "RATE_LIMITED",
		Message: "too many redemption attempts, please try again later",
	}
)
