package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachegate/cachegate/config"
	"github.com/cachegate/cachegate/internal/adapters/jwtauth"
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	apperrors "github.com/cachegate/cachegate/internal/errors"
	mocks "github.com/cachegate/cachegate/internal/mocks/auth"
	"github.com/cachegate/cachegate/internal/testutil"
)

func enabledJWT() config.JWTConfig {
	return config.JWTConfig{
		Enabled:    true,
		Secret:     testutil.TestSecret,
		Algorithm:  "HS256",
		AdminClaim: "role",
		AdminValue: "admin",
	}
}

func newTestAuthenticator(verifier *mocks.StaticVerifier) *Authenticator {
	return NewAuthenticator(AuthenticatorOptions{Config: enabledJWT(), Verifier: verifier})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearer   ", ""},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, BearerToken(tt.header))
		})
	}
}

func TestAuthenticator_DisabledAllowsEverything(t *testing.T) {
	verifier := mocks.NewStaticVerifier(nil)
	a := NewAuthenticator(AuthenticatorOptions{Config: config.JWTConfig{Enabled: false}, Verifier: verifier})

	for _, access := range []domainauth.Access{domainauth.AccessPublic, domainauth.AccessProtected, domainauth.AccessAdmin} {
		d := a.Authenticate("", access)
		assert.True(t, d.Allowed(), access.String())
		assert.Nil(t, d.Claims)
	}
	assert.Zero(t, verifier.Calls)
}

func TestAuthenticator_PublicSkipsVerification(t *testing.T) {
	verifier := mocks.NewStaticVerifier(nil)
	a := newTestAuthenticator(verifier)

	d := a.Authenticate("Bearer garbage", domainauth.AccessPublic)
	assert.True(t, d.Allowed())
	assert.Zero(t, verifier.Calls)
}

func TestAuthenticator_Protected(t *testing.T) {
	verifier := mocks.NewStaticVerifier(map[string]domainauth.Claims{
		"user": {"sub": "acme"},
	})
	a := newTestAuthenticator(verifier)

	tests := []struct {
		name     string
		header   string
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{name: "missing header", header: "", wantCode: apperrors.ErrCodeUnauthorized, wantMsg: "missing bearer token"},
		{name: "wrong scheme", header: "Basic user", wantCode: apperrors.ErrCodeUnauthorized, wantMsg: "missing bearer token"},
		{name: "unknown token", header: "Bearer nope", wantCode: apperrors.ErrCodeUnauthorized, wantMsg: "invalid token"},
		{name: "valid token", header: "Bearer user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := a.Authenticate(tt.header, domainauth.AccessProtected)
			if tt.wantMsg == "" {
				require.True(t, d.Allowed())
				assert.Equal(t, "acme", d.Claims["sub"])
				return
			}
			require.False(t, d.Allowed())
			assert.Equal(t, tt.wantCode, apperrors.GetCode(d.Err))
			assert.Equal(t, tt.wantMsg, apperrors.PublicMessage(d.Err))
		})
	}
}

func TestAuthenticator_VerifierErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "expired",
			err:      fmt.Errorf("%w: exp in the past", domainauth.ErrTokenExpired),
			wantCode: apperrors.ErrCodeUnauthorized,
			wantMsg:  "token expired",
		},
		{
			name:     "invalid",
			err:      fmt.Errorf("%w: bad signature", domainauth.ErrTokenInvalid),
			wantCode: apperrors.ErrCodeUnauthorized,
			wantMsg:  "invalid token",
		},
		{
			name:     "secret missing",
			err:      domainauth.ErrSecretNotConfigured,
			wantCode: apperrors.ErrCodeDeployment,
			wantMsg:  "jwt secret not configured",
		},
		{
			name:     "unexpected",
			err:      errors.New("disk on fire"),
			wantCode: apperrors.ErrCodeInternal,
			wantMsg:  "authentication error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mocks.StaticVerifier{VerifyFunc: func(string) (domainauth.Claims, error) {
				return nil, tt.err
			}}
			d := newTestAuthenticator(verifier).Authenticate("Bearer tok", domainauth.AccessProtected)
			require.False(t, d.Allowed())
			assert.Equal(t, tt.wantCode, apperrors.GetCode(d.Err))
			assert.Equal(t, tt.wantMsg, apperrors.PublicMessage(d.Err))
		})
	}
}

func TestAuthenticator_PanicBecomesAuthenticationError(t *testing.T) {
	verifier := &mocks.StaticVerifier{VerifyFunc: func(string) (domainauth.Claims, error) {
		panic("boom")
	}}
	d := newTestAuthenticator(verifier).Authenticate("Bearer tok", domainauth.AccessProtected)

	require.False(t, d.Allowed())
	assert.True(t, apperrors.IsInternal(d.Err))
	assert.Equal(t, "authentication error", apperrors.PublicMessage(d.Err))
}

func TestAuthenticator_NilVerifier(t *testing.T) {
	a := NewAuthenticator(AuthenticatorOptions{Config: enabledJWT()})

	d := a.Authenticate("", domainauth.AccessProtected)
	assert.Equal(t, "missing bearer token", apperrors.PublicMessage(d.Err))

	d = a.Authenticate("Bearer tok", domainauth.AccessProtected)
	assert.True(t, apperrors.IsDeployment(d.Err))
	assert.Equal(t, "jwt secret not configured", apperrors.PublicMessage(d.Err))
}

func TestAuthenticator_AdminClaimShapes(t *testing.T) {
	tests := []struct {
		name  string
		claim any
		admin bool
	}{
		{name: "bool true", claim: true, admin: true},
		{name: "bool false", claim: false, admin: false},
		{name: "matching string", claim: "admin", admin: true},
		{name: "other string", claim: "user", admin: false},
		{name: "list containing admin", claim: []any{"user", "admin"}, admin: true},
		{name: "list without admin", claim: []any{"user"}, admin: false},
		{name: "number", claim: float64(1), admin: false},
		{name: "object", claim: map[string]any{"admin": true}, admin: false},
		{name: "absent", claim: nil, admin: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := domainauth.Claims{"sub": "acme"}
			if tt.claim != nil {
				claims["role"] = tt.claim
			}
			verifier := mocks.NewStaticVerifier(map[string]domainauth.Claims{"tok": claims})
			a := newTestAuthenticator(verifier)

			d := a.Authenticate("Bearer tok", domainauth.AccessAdmin)
			if tt.admin {
				assert.True(t, d.Allowed())
				return
			}
			require.False(t, d.Allowed())
			assert.True(t, apperrors.IsForbidden(d.Err))
			assert.Equal(t, "admin token required", apperrors.PublicMessage(d.Err))

			// The same token still passes protected routes.
			assert.True(t, a.Authenticate("Bearer tok", domainauth.AccessProtected).Allowed())
		})
	}
}

func TestAuthenticator_WithJWTVerifier(t *testing.T) {
	cfg := enabledJWT()
	verifier, err := jwtauth.NewVerifier(cfg)
	require.NoError(t, err)
	a := NewAuthenticator(AuthenticatorOptions{Config: cfg, Verifier: verifier})

	admin := testutil.MintToken(t, testutil.ValidClaims(map[string]any{"sub": "ops", "role": "admin"}))
	user := testutil.MintToken(t, testutil.ValidClaims(map[string]any{"sub": "acme"}))
	expired := testutil.MintToken(t, testutil.ExpiredClaims(map[string]any{"sub": "acme"}))

	assert.True(t, a.Authenticate("Bearer "+admin, domainauth.AccessAdmin).Allowed())
	assert.True(t, apperrors.IsForbidden(a.Authenticate("Bearer "+user, domainauth.AccessAdmin).Err))

	d := a.Authenticate("Bearer "+expired, domainauth.AccessProtected)
	assert.Equal(t, "token expired", apperrors.PublicMessage(d.Err))

	d = a.Authenticate("Bearer not.a.token", domainauth.AccessProtected)
	assert.Equal(t, "invalid token", apperrors.PublicMessage(d.Err))
}
