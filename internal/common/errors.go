// Package common defines sentinel errors and constants shared by the server
// and client layers of MediaBox. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already registered")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrInvalidCredentials = errors.New("email or password wrong")
	ErrForbidden          = errors.New("not enough permissions")
	ErrValidation         = errors.New("validation error")

	// Auth errors (missing, malformed or forged token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUserNotFound = errors.New("user not found")
)
