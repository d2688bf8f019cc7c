// Package common defines shared constants and sentinel errors used across
// the client layers of kakeibo. Callers should use errors.Is to match these
// values; every failure the engine reports is distinguishable by kind.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid status")

	// Input errors.
	ErrValidation = errors.New("validation error")

	// Configuration errors (base URL or access key missing or malformed).
	ErrConfiguration = errors.New("configuration error")

	// Transport errors.
	ErrTimeout        = errors.New("request timed out")
	ErrAuthentication = errors.New("authentication failed")
	ErrNetwork        = errors.New("network error")
)

// ValidationError reports a malformed expense field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
