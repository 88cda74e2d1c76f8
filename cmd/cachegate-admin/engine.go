package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cachegate/cachegate/config"
	"github.com/cachegate/cachegate/internal/bootstrap"
	"github.com/cachegate/cachegate/internal/core"
)

var errSharedEngineRequired = errors.New("cachegate-admin requires a shared engine (ENGINE_BACKEND=redis)")

func (a *app) openConfiguredEngine(ctx context.Context) (core.Engine, func() error, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return openSharedEngine(ctx, &cfg, a.logger)
}

// openSharedEngine connects to the engine every gateway instance uses. A process-local
// memory engine would be empty here, so it is refused.
func openSharedEngine(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (core.Engine, func() error, error) {
	if !cfg.Engine.IsShared() {
		return nil, nil, errSharedEngineRequired
	}
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisConnectConfig{
		Redis:  cfg.Engine.Redis,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	handle, err := bootstrap.BuildEngine(bootstrap.EngineDeps{
		Config: cfg.Engine,
		Redis:  client,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, errors.Join(err, client.Close())
	}
	return handle.Engine, client.Close, nil
}
