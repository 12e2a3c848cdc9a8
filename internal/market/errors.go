// Package market holds the error taxonomy shared by the store, the external
// collaborators and the HTTP facade. Every error here is an expected,
// recoverable outcome rendered to the caller; anything else is an internal
// fault and stays a plain error.
package market

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthor          = errors.New("caller is not the package author")
	ErrNotEntitled        = errors.New("caller does not own this package")
	ErrDuplicateReview    = errors.New("caller already reviewed this package")
	ErrAlreadyOwned       = errors.New("package already owned")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPaymentDeclined    = errors.New("payment declined")
)

// ValidationError collects every violated field of a request, not just the
// first one found.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

// Any reports whether at least one violation was recorded.
func (e *ValidationError) Any() bool { return len(e.Fields) > 0 }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
