package service

import (
	"github.com/cachegate/cachegate/config"
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// NamespaceBinder derives the namespace a caller may operate in from its verified claims.
type NamespaceBinder struct {
	cfg config.BindConfig
}

// NewNamespaceBinder constructs a NamespaceBinder.
func NewNamespaceBinder(cfg config.BindConfig) *NamespaceBinder {
	if cfg.NamespaceClaim == "" {
		cfg.NamespaceClaim = "sub"
	}
	return &NamespaceBinder{cfg: cfg}
}

// Enabled reports whether binding is active.
func (b *NamespaceBinder) Enabled() bool {
	return b != nil && b.cfg.Enabled
}

// Resolve returns the effective namespace for a request.
//
// With binding disabled the explicit namespace passes through verbatim (possibly empty).
// With binding enabled the namespace is prefix+claim; an explicit namespace must match it exactly.
func (b *NamespaceBinder) Resolve(claims domainauth.Claims, explicit string) (domainauth.Binding, error) {
	if !b.Enabled() {
		return domainauth.Binding{Namespace: explicit}, nil
	}

	value, ok := claims.String(b.cfg.NamespaceClaim)
	if !ok || value == "" {
		return domainauth.Binding{}, apperrors.Forbidden("missing bind claim")
	}

	bound := b.cfg.Prefix + value
	if explicit != "" && explicit != bound {
		return domainauth.Binding{}, apperrors.Forbiddenf("namespace %q is outside the bound namespace", explicit)
	}
	return domainauth.Binding{Namespace: bound, Bound: true}, nil
}
