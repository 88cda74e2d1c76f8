// Package jwtauth verifies bearer tokens with golang-jwt.
package jwtauth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cachegate/cachegate/config"
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
)

// Verifier implements ports.TokenVerifier for one configured algorithm and key.
type Verifier struct {
	key    any
	parser *jwt.Parser
}

// NewVerifier builds a verifier from cfg. An empty secret is accepted: every Verify call then
// reports domainauth.ErrSecretNotConfigured. A secret that is not a valid PEM key for an
// asymmetric algorithm is a startup error.
func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{string(cfg.Algorithm)})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	v := &Verifier{parser: jwt.NewParser(opts...)}
	if cfg.Secret == "" {
		return v, nil
	}

	key, err := verificationKey(cfg.Algorithm, cfg.Secret)
	if err != nil {
		return nil, err
	}
	v.key = key
	return v, nil
}

func verificationKey(alg config.SigningAlgorithm, secret string) (any, error) {
	if alg.IsHMAC() {
		return []byte(secret), nil
	}

	var (
		key any
		err error
	)
	switch string(alg)[:2] {
	case "RS", "PS":
		key, err = jwt.ParseRSAPublicKeyFromPEM([]byte(secret))
	case "ES":
		key, err = jwt.ParseECPublicKeyFromPEM([]byte(secret))
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s public key: %w", alg, err)
	}
	return key, nil
}

// Verify checks the token and returns its claims.
func (v *Verifier) Verify(token string) (domainauth.Claims, error) {
	if v.key == nil {
		return nil, domainauth.ErrSecretNotConfigured
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domainauth.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", domainauth.ErrTokenInvalid, err)
	}
	return domainauth.Claims(claims), nil
}
