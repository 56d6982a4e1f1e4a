// Package common defines shared constants, helpers and sentinel errors used
// across the userkeeper server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// ErrorUnauthorized is returned by login for both an unknown email and a
	// wrong password.
	ErrorUnauthorized = errors.New("invalid email or password")

	// ErrUnauthenticated covers every failure to turn a bearer token into a user.
	ErrUnauthenticated = errors.New("could not validate credentials")

	ErrForbidden = errors.New("forbidden")

	// Auth errors (invalid, expired or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Client input errors.
	ErrInvalidIdentifier = errors.New("identifier must be a user id or an email")
	ErrValidation        = errors.New("validation error")
)
