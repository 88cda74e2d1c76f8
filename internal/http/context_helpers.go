package httpx

import (
	"context"
	"sync"

	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
)

// claimsKey is an unexported context key type to avoid collisions across packages.
type claimsKey struct{}

// SetClaimsInContext returns a child context that carries the verified claims.
// If claims is nil, the original ctx is returned unchanged.
func SetClaimsInContext(ctx context.Context, claims domainauth.Claims) context.Context {
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the verified claims of the current request, if any.
func ClaimsFromContext(ctx context.Context) (domainauth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(domainauth.Claims)
	return claims, ok && claims != nil
}

type requestIDKey struct{}

// RequestIDFromContext returns the request id assigned by the RequestID middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// routeInfo is filled in by the dispatcher so outer middleware can tag by route.
type routeInfo struct {
	mu   sync.Mutex
	name string
	err  error
}

type routeInfoKey struct{}

func withRouteInfo(ctx context.Context) (context.Context, *routeInfo) {
	info := &routeInfo{}
	return context.WithValue(ctx, routeInfoKey{}, info), info
}

func routeInfoFrom(ctx context.Context) *routeInfo {
	info, _ := ctx.Value(routeInfoKey{}).(*routeInfo)
	return info
}

func noteRoute(ctx context.Context, name string) {
	if info := routeInfoFrom(ctx); info != nil {
		info.mu.Lock()
		info.name = name
		info.mu.Unlock()
	}
}

func noteError(ctx context.Context, err error) {
	if info := routeInfoFrom(ctx); info != nil {
		info.mu.Lock()
		info.err = err
		info.mu.Unlock()
	}
}

func (i *routeInfo) snapshot() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.name, i.err
}
