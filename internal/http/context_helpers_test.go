package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
)

func TestClaimsContext(t *testing.T) {
	claims, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, claims)

	// Nil claims leave the context untouched.
	ctx := SetClaimsInContext(context.Background(), nil)
	_, ok = ClaimsFromContext(ctx)
	assert.False(t, ok)

	want := domainauth.Claims{"sub": "alice"}
	got, ok := ClaimsFromContext(SetClaimsInContext(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRouteInfoWithoutCollector(t *testing.T) {
	// Noting outside the metrics middleware is a no-op.
	assert.NotPanics(t, func() {
		noteRoute(context.Background(), "keys")
		noteError(context.Background(), nil)
	})
	assert.Nil(t, routeInfoFrom(context.Background()))
}
