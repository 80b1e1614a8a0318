package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalError  = errors.New("internal server error")
)

// ValidationError reports a malformed request, typically a missing
// required field. Handlers map it to HTTP 400.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// MissingField builds a ValidationError for a required request field.
func MissingField(field string) error {
	return &ValidationError{Field: field}
}

// IsValidationError checks if an error is a client-input validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidRequest)
}
