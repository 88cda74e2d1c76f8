package auth

import (
	"errors"
	"testing"
)

func TestClaimsString(t *testing.T) {
	claims := Claims{
		"sub":    "acme",
		"tenant": float64(42),
		"ratio":  1.5,
		"flag":   true,
		"empty":  nil,
	}

	tests := []struct {
		name   string
		claim  string
		want   string
		wantOK bool
	}{
		{"string", "sub", "acme", true},
		{"integral number", "tenant", "42", true},
		{"fractional number", "ratio", "1.5", true},
		{"bool", "flag", "true", true},
		{"null", "empty", "", false},
		{"absent", "missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := claims.String(tt.claim)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("String(%q) = (%q, %v), want (%q, %v)", tt.claim, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNilClaims(t *testing.T) {
	var c Claims
	if _, ok := c.Get("sub"); ok {
		t.Error("nil claims must report absence")
	}
}

func TestDecision(t *testing.T) {
	if !Allow(nil).Allowed() {
		t.Error("Allow must be allowed")
	}
	if Deny(errors.New("nope")).Allowed() {
		t.Error("Deny must not be allowed")
	}
}

func TestAccessString(t *testing.T) {
	if AccessAdmin.String() != "admin" || AccessPublic.String() != "public" || AccessProtected.String() != "protected" {
		t.Error("unexpected access names")
	}
}
