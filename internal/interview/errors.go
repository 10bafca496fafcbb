package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the interview id is unknown.
	ErrNotFound = errors.New("interview not found")

	// ErrInvalidState means the operation does not apply to the session's
	// current state, such as answering a completed interview.
	ErrInvalidState = errors.New("invalid interview state")

	// ErrNotReady means the report was requested before the interview
	// finished.
	ErrNotReady = errors.New("interview not yet completed")

	// ErrInsufficientData means report synthesis ran over an interview with
	// no evaluations.
	ErrInsufficientData = errors.New("insufficient data for report")

	// ErrExternalService wraps failures of a downstream dependency that
	// could not be absorbed by a fallback.
	ErrExternalService = errors.New("external service failure")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
