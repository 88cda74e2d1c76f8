package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cachegate/cachegate/config"
	"github.com/cachegate/cachegate/internal/adapters/jwtauth"
	"github.com/cachegate/cachegate/internal/core"
	"github.com/cachegate/cachegate/internal/observability/statsd"
	"github.com/cachegate/cachegate/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth    *service.Authenticator
	Binder  *service.NamespaceBinder
	Cache   *service.CacheService
	Metrics *statsd.Client
}

// metricsSink returns nil unless a client is actively emitting, so the metrics middleware is skipped.
//
//nolint:ireturn // nil interface signals "no metrics".
func (c ServiceContainer) metricsSink() statsd.Sink {
	if !c.Metrics.Enabled() {
		return nil
	}
	return c.Metrics
}

// Close releases resources held by the services.
func (c ServiceContainer) Close() error {
	return c.Metrics.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Engine core.Engine
	Logger *slog.Logger
}

// NewServices wires the authenticator, binder and cache service over engine.
// A JWT key that cannot be parsed is a startup error; a missing secret is not.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service dependencies require a config")
	}
	if deps.Engine == nil {
		return ServiceContainer{}, errors.New("service dependencies require an engine")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	verifier, err := jwtauth.NewVerifier(cfg.Auth.JWT)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build token verifier: %w", err)
	}
	if cfg.Auth.JWT.Enabled && cfg.Auth.JWT.Secret == "" {
		logger.Warn("JWT auth enabled without a secret; protected routes will answer 500")
	}

	binder := service.NewNamespaceBinder(cfg.Auth.Bind)
	return ServiceContainer{
		Auth: service.NewAuthenticator(service.AuthenticatorOptions{
			Config:   cfg.Auth.JWT,
			Verifier: verifier,
			Logger:   logger,
		}),
		Binder: binder,
		Cache: service.NewCacheService(service.CacheServiceOptions{
			Engine: deps.Engine,
			Binder: binder,
			Logger: logger,
		}),
		Metrics: buildMetrics(logger, cfg.Observability.Metrics),
	}, nil
}

// buildMetrics returns an inert client when metrics are disabled or the sink cannot be reached.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	logger.Info("statsd metrics enabled", "addr", cfg.StatsdAddress, "prefix", cfg.Prefix)
	return client
}

// RunConfig contains everything RunWithShutdown starts.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Engine   EngineHandle
	Logger   *slog.Logger
}

// RunWithShutdown serves HTTP and runs engine background work until ctx is cancelled or
// either fails, then shuts the server down gracefully.
func RunWithShutdown(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := BuildHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ServeHTTP(server, cfg.Config.HTTP.TLS, logger); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if bg := cfg.Engine.Background; bg != nil {
		g.Go(func() error {
			if err := bg(gctx); err != nil {
				return fmt.Errorf("engine background: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ShutdownConfig{Context: ctx, Server: server, Logger: logger})
	})

	return g.Wait()
}
