// Package common defines shared constants and sentinel errors used across
// the ATS server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Login failures. Unknown email, inactive or deleted principal and wrong
	// secret all collapse into this one value.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Refresh failures: malformed, expired, revoked or orphaned refresh token.
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Guard failures. These two must stay distinct.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)
