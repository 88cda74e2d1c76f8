package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
)

func TestStaticVerifier_Table(t *testing.T) {
	v := NewStaticVerifier(map[string]domainauth.Claims{"good": {"sub": "acme"}})

	claims, err := v.Verify("good")
	require.NoError(t, err)
	assert.Equal(t, "acme", claims["sub"])

	_, err = v.Verify("bad")
	assert.ErrorIs(t, err, domainauth.ErrTokenInvalid)
	assert.Equal(t, 2, v.Calls)
}

func TestStaticVerifier_Func(t *testing.T) {
	boom := errors.New("boom")
	v := &StaticVerifier{VerifyFunc: func(string) (domainauth.Claims, error) { return nil, boom }}

	_, err := v.Verify("anything")
	assert.ErrorIs(t, err, boom)
}
