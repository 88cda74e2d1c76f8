package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cachegate/cachegate/config"
	"github.com/cachegate/cachegate/internal/core"
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	"github.com/cachegate/cachegate/internal/domain/query"
	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// DefaultLeastTouchedCount is used when the caller gives no usable count.
const DefaultLeastTouchedCount = 10

// CacheServiceOptions groups dependencies for CacheService.
type CacheServiceOptions struct {
	Engine core.Engine      // Required: the cache engine
	Binder *NamespaceBinder // Optional: nil disables binding
	Logger *slog.Logger     // Optional: structured logger
}

// CacheService runs cache operations on behalf of an authenticated caller.
// Every namespace-bearing operation resolves its namespace through the binder before the engine is reached.
type CacheService struct {
	engine core.Engine
	binder *NamespaceBinder
	logger *slog.Logger
}

// NewCacheService constructs a new CacheService.
func NewCacheService(opts CacheServiceOptions) *CacheService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	binder := opts.Binder
	if binder == nil {
		binder = NewNamespaceBinder(config.BindConfig{})
	}
	return &CacheService{engine: opts.Engine, binder: binder, logger: logger.With("component", "cache_service")}
}

// Caller identifies who a request runs as. Claims are nil when authentication is off.
type Caller struct {
	Claims domainauth.Claims
}

// WriteParams groups parameters for CacheService.Write.
type WriteParams struct {
	Key       string
	Value     any
	ExpiresIn time.Duration
	Namespace string
}

func (s *CacheService) namespace(caller Caller, explicit string) (string, error) {
	binding, err := s.binder.Resolve(caller.Claims, explicit)
	if err != nil {
		return "", err
	}
	return binding.Namespace, nil
}

// Read returns the value under key, or a not-found error.
func (s *CacheService) Read(ctx context.Context, caller Caller, key, namespace string) (any, error) {
	ns, err := s.namespace(caller, namespace)
	if err != nil {
		return nil, err
	}
	value, ok, err := s.engine.Read(ctx, key, ns)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("not found")
	}
	return value, nil
}

// Write stores a value. A nil value is rejected.
func (s *CacheService) Write(ctx context.Context, caller Caller, p WriteParams) error {
	if p.Value == nil {
		return apperrors.ValidationField("value", "value is required")
	}
	ns, err := s.namespace(caller, p.Namespace)
	if err != nil {
		return err
	}
	return s.engine.Write(ctx, core.WriteRequest{
		Key:       p.Key,
		Value:     p.Value,
		ExpiresIn: p.ExpiresIn,
		Namespace: ns,
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *CacheService) Delete(ctx context.Context, caller Caller, key, namespace string) error {
	ns, err := s.namespace(caller, namespace)
	if err != nil {
		return err
	}
	_, err = s.engine.Delete(ctx, key, ns)
	return err
}

func (s *CacheService) Exists(ctx context.Context, caller Caller, key, namespace string) (bool, error) {
	ns, err := s.namespace(caller, namespace)
	if err != nil {
		return false, err
	}
	return s.engine.Exists(ctx, key, ns)
}

// Inspect returns entry metadata, or a not-found error.
func (s *CacheService) Inspect(ctx context.Context, caller Caller, key, namespace string) (*core.EntryInfo, error) {
	ns, err := s.namespace(caller, namespace)
	if err != nil {
		return nil, err
	}
	info, err := s.engine.Inspect(ctx, key, ns)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, apperrors.NotFound("not found")
	}
	return info, nil
}

// Keys lists a namespace. Without binding the caller must name the namespace.
func (s *CacheService) Keys(ctx context.Context, caller Caller, namespace string) ([]string, error) {
	ns, err := s.namespace(caller, namespace)
	if err != nil {
		return nil, err
	}
	if ns == "" {
		return nil, apperrors.ValidationField("namespace", "namespace is required")
	}
	return s.engine.Keys(ctx, ns)
}

// ClearNamespace removes every entry of a namespace and returns the namespace cleared.
func (s *CacheService) ClearNamespace(ctx context.Context, caller Caller, namespace string) (string, error) {
	ns, err := s.namespace(caller, namespace)
	if err != nil {
		return "", err
	}
	if ns == "" {
		return "", apperrors.ValidationField("namespace", "namespace is required")
	}
	if err := s.engine.ClearNamespace(ctx, ns); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "namespace cleared", "namespace", ns)
	return ns, nil
}

// LeastTouched returns the n least accessed keys. Non-positive n uses the default.
func (s *CacheService) LeastTouched(ctx context.Context, n int) ([]core.TouchCount, error) {
	if n <= 0 {
		n = DefaultLeastTouchedCount
	}
	return s.engine.LeastTouched(ctx, n)
}

func (s *CacheService) AllKeys(ctx context.Context) ([]string, error) {
	return s.engine.AllKeys(ctx)
}

func (s *CacheService) Metrics(ctx context.Context) (*core.Metrics, error) {
	return s.engine.Metrics(ctx)
}

func (s *CacheService) ResetMetrics(ctx context.Context) error {
	return s.engine.ResetMetrics(ctx)
}

// Reset clears all cache data.
func (s *CacheService) Reset(ctx context.Context) error {
	if err := s.engine.Reset(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "cache reset")
	return nil
}

// Query compiles params and runs the result against the caller's namespace scope.
// Compile errors never reach the engine.
func (s *CacheService) Query(ctx context.Context, caller Caller, params map[string]any) (any, error) {
	spec, err := query.Compile(params)
	if err != nil {
		return nil, err
	}
	ns, err := s.namespace(caller, spec.Namespace)
	if err != nil {
		return nil, err
	}
	spec.Namespace = ns
	return spec.Execute(ctx, s.engine.Scope(ns))
}
