package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
)

// TokenVerifier checks a bearer token's signature and registered claims.
//
// Verify returns the token's claims, or an error wrapping one of
// domainauth.ErrTokenExpired, domainauth.ErrTokenInvalid or domainauth.ErrSecretNotConfigured.
type TokenVerifier interface {
	Verify(token string) (domainauth.Claims, error)
}
