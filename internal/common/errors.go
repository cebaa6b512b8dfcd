// Package common defines shared sentinel errors used across the Insight API
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors. The credentials message is deliberately identical for an
	// unknown username and a wrong password, so responses cannot be used to
	// enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")

	// Registration / validation errors.
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrValidation        = errors.New("validation error")
)
