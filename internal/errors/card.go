package errors

var (
	ErrInvalidCode = &DomainError{
		Code:    "INVALID_CODE",
		Message: "card code is not recognized",
	}
	ErrCardAlreadyUsed = &DomainError{
		Code:    "ALREADY_USED",
		Message: "card code has already been redeemed",
	}
	ErrCardExpired = &DomainError{
		Code:    "EXPIRED",
		Message: "card code has expired",
	}
)
