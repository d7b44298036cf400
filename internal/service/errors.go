// Package service holds the transaction, budget and account logic behind
// the HTTP handlers. Every lookup that touches user data is scoped by the
// owner id inside the query predicate itself.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "does not exist" and "belongs to someone else".
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is returned for missing or malformed input, before any
// store call is made.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Caller identifies who is invoking an operation.
type Caller struct {
	UserID uint
	Admin  bool
}
