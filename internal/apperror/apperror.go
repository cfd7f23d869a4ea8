// Package apperror defines the error kinds the RSVP service reports to its callers.
//
// Only two kinds exist: a submission that fails validation, and everything else
// (store outages, unexpected failures). Handlers map the first to 400 and the
// second to 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrInternal   = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel kind (ErrValidation or ErrInternal)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure, logged but never shown to users
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is works for either.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Internal wraps an unexpected failure. The message is what the caller may show;
// the cause stays server-side.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
		Cause:   cause,
	}
}
