// Package common defines shared constants and sentinel errors used across
// client and server layers of authkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// Service-level errors.
	ErrInternal           = errors.New("internal error")
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	// Auth errors. ErrMissingToken means no credential was presented at all,
	// ErrInvalidToken means one was presented and rejected.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired wraps ErrInvalidToken so callers that only care about
	// "rejected" can match on ErrInvalidToken.
	ErrTokenExpired = &tokenExpiredError{}
)

type tokenExpiredError struct{}

func (*tokenExpiredError) Error() string { return "token expired" }

func (*tokenExpiredError) Unwrap() error { return ErrInvalidToken }

// ValidationError is a user-correctable input problem. Its message is safe
// to show to the caller. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }
