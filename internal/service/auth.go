package service

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cachegate/cachegate/config"
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	apperrors "github.com/cachegate/cachegate/internal/errors"
	"github.com/cachegate/cachegate/internal/ports"
)

// AuthenticatorOptions groups dependencies for Authenticator.
type AuthenticatorOptions struct {
	Config   config.JWTConfig    // Required: token verification settings
	Verifier ports.TokenVerifier // Required when Config.Enabled
	Logger   *slog.Logger        // Optional: structured logger
}

// Authenticator gates each request: public routes pass, protected routes need a verified
// bearer token, admin routes additionally need the configured admin indicator.
type Authenticator struct {
	cfg      config.JWTConfig
	verifier ports.TokenVerifier
	logger   *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(opts AuthenticatorOptions) *Authenticator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		cfg:      opts.Config,
		verifier: opts.Verifier,
		logger:   logger.With("component", "authenticator"),
	}
}

// Enabled reports whether tokens are checked at all.
func (a *Authenticator) Enabled() bool {
	return a.cfg.Enabled
}

var bearerSplit = regexp.MustCompile(`\s+`)

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively; an empty token counts as absent.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := bearerSplit.Split(header, 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate runs the authentication state machine for one request.
// It never panics: unexpected failures become a 500-class denial.
func (a *Authenticator) Authenticate(authorization string, access domainauth.Access) (decision domainauth.Decision) {
	if !a.cfg.Enabled || access == domainauth.AccessPublic {
		return domainauth.Allow(nil)
	}

	token := BearerToken(authorization)
	if token == "" {
		return domainauth.Deny(apperrors.Unauthorized("missing bearer token"))
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("token verification panicked", "panic", r)
			decision = domainauth.Deny(apperrors.Wrap(fmt.Errorf("%v", r), apperrors.ErrCodeInternal, "authentication error"))
		}
	}()

	if a.verifier == nil {
		return domainauth.Deny(apperrors.Deployment("jwt secret not configured"))
	}

	claims, err := a.verifier.Verify(token)
	if err != nil {
		return domainauth.Deny(a.classify(err))
	}

	if access == domainauth.AccessAdmin && !a.isAdmin(claims) {
		return domainauth.Deny(apperrors.Forbidden("admin token required"))
	}

	return domainauth.Allow(claims)
}

func (a *Authenticator) classify(err error) error {
	switch {
	case errors.Is(err, domainauth.ErrSecretNotConfigured):
		return apperrors.Wrap(err, apperrors.ErrCodeDeployment, "jwt secret not configured")
	case errors.Is(err, domainauth.ErrTokenExpired):
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "token expired")
	case errors.Is(err, domainauth.ErrTokenInvalid):
		a.logger.Debug("token rejected", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid token")
	default:
		a.logger.Error("token verification failed", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "authentication error")
	}
}

// isAdmin accepts true, a string equal to the admin value, or a list containing it.
func (a *Authenticator) isAdmin(claims domainauth.Claims) bool {
	v, ok := claims.Get(a.cfg.AdminClaim)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == a.cfg.AdminValue
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == a.cfg.AdminValue {
				return true
			}
		}
		return false
	case []string:
		for _, s := range t {
			if s == a.cfg.AdminValue {
				return true
			}
		}
		return false
	default:
		return false
	}
}
