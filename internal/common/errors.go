// Package common defines shared constants and sentinel errors used across
// the dinoauth server and CLI. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. ErrorUnauthorized is the routine "denied"
	// outcome; ErrorInternal marks infrastructure failures.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Token errors returned by the codec.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Registration policy.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// Startup errors.
	ErrInvalidConfig = errors.New("invalid config")
)
