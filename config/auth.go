package config

import (
	"fmt"
	"strings"
)

// SigningAlgorithm is the JWT algorithm accepted by the authenticator.
type SigningAlgorithm string

// IsHMAC reports whether the algorithm verifies with a shared secret.
func (a SigningAlgorithm) IsHMAC() bool {
	return strings.HasPrefix(string(a), "HS")
}

// UnmarshalText implements encoding.TextUnmarshaler for SigningAlgorithm.
func (a *SigningAlgorithm) UnmarshalText(text []byte) error {
	v := strings.ToUpper(strings.TrimSpace(string(text)))
	switch v {
	case "HS256", "HS384", "HS512",
		"RS256", "RS384", "RS512",
		"ES256", "ES384", "ES512",
		"PS256", "PS384", "PS512":
		*a = SigningAlgorithm(v)
		return nil
	default:
		return fmt.Errorf("invalid SigningAlgorithm: %q (valid options: HS*, RS*, ES*, PS*)", v)
	}
}

// JWTConfig controls bearer token verification.
type JWTConfig struct {
	// Enabled turns authentication on. When false every route is public.
	Enabled bool `env:"ENABLED" envDefault:"false"`

	// Secret is the HMAC secret, or the PEM-encoded public key for RS/ES/PS algorithms.
	Secret string `env:"SECRET"`

	Algorithm SigningAlgorithm `env:"ALGORITHM" envDefault:"HS256"`

	// Issuer and Audience are enforced only when set.
	Issuer   string `env:"ISSUER"`
	Audience string `env:"AUDIENCE"`

	// AdminClaim names the claim carrying the admin indicator; AdminValue is the value it must hold.
	AdminClaim string `env:"ADMIN_CLAIM" envDefault:"role"`
	AdminValue string `env:"ADMIN_VALUE" envDefault:"admin"`
}

// Sanitize normalises claim names and restores defaults cleared by empty env values.
func (c *JWTConfig) Sanitize() {
	c.AdminClaim = strings.TrimSpace(c.AdminClaim)
	if c.AdminClaim == "" {
		c.AdminClaim = "role"
	}
	if c.Algorithm == "" {
		c.Algorithm = "HS256"
	}
}

// BindConfig controls tenant namespace binding.
type BindConfig struct {
	// Enabled derives each caller's namespace from a verified claim.
	Enabled bool `env:"ENABLED" envDefault:"false"`

	// NamespaceClaim names the claim whose value is the caller's namespace.
	NamespaceClaim string `env:"NAMESPACE_CLAIM" envDefault:"sub"`

	// Prefix is prepended to the claim value.
	Prefix string `env:"PREFIX" envDefault:""`
}

// Sanitize restores the default claim name when blank.
func (c *BindConfig) Sanitize() {
	c.NamespaceClaim = strings.TrimSpace(c.NamespaceClaim)
	if c.NamespaceClaim == "" {
		c.NamespaceClaim = "sub"
	}
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	JWT  JWTConfig  `envPrefix:"JWT_"`
	Bind BindConfig `envPrefix:"BIND_"`
}

// Sanitize applies guardrails to auth sub-configs.
func (c *AuthConfig) Sanitize() {
	c.JWT.Sanitize()
	c.Bind.Sanitize()
}
