package auth

// Package auth contains domain-level types for request authentication and authorization.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"fmt"
	"strconv"
)

// Verification failures reported by token verifiers.
var (
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrSecretNotConfigured = errors.New("jwt secret not configured")
)

// Access classifies how strictly a route is guarded.
type Access int

const (
	// AccessPublic routes never require a token (health, docs, openapi document).
	AccessPublic Access = iota
	// AccessProtected routes require a verified token when authentication is enabled.
	AccessProtected
	// AccessAdmin routes additionally require the configured admin indicator in the claims.
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Claims is the verified payload of a bearer token. Lifetime is one request.
type Claims map[string]any

// Get returns the raw claim value and whether it is present and non-null.
func (c Claims) Get(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String renders the claim as a string, the way it is concatenated into a namespace.
// Integral JSON numbers render without a fractional part.
func (c Claims) String(name string) (string, bool) {
	v, ok := c.Get(name)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}

// Decision is the terminal outcome of authenticating one request.
// A denied decision carries a typed error whose code determines the response status.
type Decision struct {
	Claims Claims
	Err    error
}

// Allow returns a permitting decision. Claims may be nil when no token was required.
func Allow(claims Claims) Decision { return Decision{Claims: claims} }

// Deny returns a rejecting decision.
func Deny(err error) Decision { return Decision{Err: err} }

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Err == nil }

// Binding is the effective namespace resolved for a request.
// Bound is false when binding is disabled, in which case Namespace is the caller's verbatim input.
type Binding struct {
	Namespace string
	Bound     bool
}
