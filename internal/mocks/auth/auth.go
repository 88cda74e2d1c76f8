package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	"github.com/cachegate/cachegate/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.TokenVerifier = (*StaticVerifier)(nil)

// StaticVerifier resolves tokens from a fixed table.
// VerifyFunc, when set, takes precedence over the table.
type StaticVerifier struct {
	VerifyFunc func(token string) (domainauth.Claims, error)

	// Tokens maps a raw token to the claims it verifies to.
	Tokens map[string]domainauth.Claims

	// Calls counts Verify invocations.
	Calls int
}

// NewStaticVerifier creates a StaticVerifier over tokens.
func NewStaticVerifier(tokens map[string]domainauth.Claims) *StaticVerifier {
	return &StaticVerifier{Tokens: tokens}
}

// Verify returns the claims registered for token, or ErrTokenInvalid.
func (v *StaticVerifier) Verify(token string) (domainauth.Claims, error) {
	v.Calls++
	if v.VerifyFunc != nil {
		return v.VerifyFunc(token)
	}
	claims, ok := v.Tokens[token]
	if !ok {
		return nil, domainauth.ErrTokenInvalid
	}
	return claims, nil
}
