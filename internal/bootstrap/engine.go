package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cachegate/cachegate/config"
	redisengine "github.com/cachegate/cachegate/internal/adapters/redis"
	"github.com/cachegate/cachegate/internal/core"
	"github.com/cachegate/cachegate/internal/engine/memory"
)

// EngineDeps contains what BuildEngine needs. Redis is required for the redis backend.
type EngineDeps struct {
	Config config.EngineConfig
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// EngineHandle is a constructed cache engine plus its optional background work.
type EngineHandle struct {
	Engine core.Engine

	// Background runs until ctx is cancelled; nil when the backend needs none.
	Background func(ctx context.Context) error
}

// BuildEngine constructs the configured cache engine.
func BuildEngine(deps EngineDeps) (EngineHandle, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limits := deps.Config.Cache

	switch deps.Config.Backend {
	case config.EngineRedis:
		if deps.Redis == nil {
			return EngineHandle{}, errors.New("redis engine requires a redis client")
		}
		engine := redisengine.NewEngine(deps.Redis, redisengine.Options{
			Prefix:        deps.Config.Redis.KeyPrefix,
			MaxValueBytes: limits.MaxValueBytes,
			DefaultTTL:    limits.DefaultTTL,
			MaxTTL:        limits.MaxTTL,
			Logger:        logger,
		})
		// Redis expires entries itself.
		return EngineHandle{Engine: engine}, nil

	case config.EngineMemory, "":
		engine := memory.New(memory.Options{
			Buckets:         limits.Buckets,
			MaxBytes:        limits.MaxBytes,
			MaxValueBytes:   limits.MaxValueBytes,
			HardMemoryLimit: limits.HardMemoryLimit,
			DefaultTTL:      limits.DefaultTTL,
			MaxTTL:          limits.MaxTTL,
			ExpiryInterval:  limits.ExpiryInterval,
			Logger:          logger,
		})
		return EngineHandle{Engine: engine, Background: engine.RunSweeper}, nil

	default:
		return EngineHandle{}, fmt.Errorf("unsupported engine backend %q", deps.Config.Backend)
	}
}
