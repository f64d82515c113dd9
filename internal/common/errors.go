// Package common defines shared constants and sentinel errors used across
// the registration server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration failure kinds.
	ErrInvalidEmailFormat    = errors.New("invalid email format")
	ErrInvalidPasswordFormat = errors.New("invalid password format")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrPersistence           = errors.New("persistence failure")
	ErrTokenIssuance         = errors.New("token issuance failure")

	// Token errors. ErrMalformedToken is structural (cannot be decoded or
	// signature does not match), ErrInvalidToken is semantic (expired or
	// issued for someone else).
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
)
