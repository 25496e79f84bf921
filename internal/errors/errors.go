// Package errors defines the stable, machine-readable error kinds the
// wallet API surfaces. Handlers translate kinds to HTTP statuses; internal
// storage error text never reaches a client.
package errors

import "fmt"

// DomainError is an error with a stable machine-readable kind and a
// human-readable message safe to return to clients.
type DomainError struct {
	Code    string `json:"kind"`
	Message string `json:"message"`
	// RetryAfterSeconds is set on throttling errors as a hint to the
	// caller; zero means no hint.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is match any two DomainErrors with the same code, so a
// derived error (e.g. one carrying a retry-after hint) still matches its
// sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithRetryAfter returns a copy of the error carrying a retry-after hint.
func (e *DomainError) WithRetryAfter(seconds int) *DomainError {
	if seconds < 1 {
		seconds = 1
	}
	return &DomainError{
		Code:              e.Code,
		Message:           e.Message,
		RetryAfterSeconds: seconds,
	}
}
