package config

import (
	"fmt"
	"strings"
	"time"
)

// EngineBackend selects the cache engine implementation.
type EngineBackend string

const (
	// EngineMemory keeps entries inside the gateway process.
	EngineMemory EngineBackend = "memory"
	// EngineRedis shares entries across processes through Redis.
	EngineRedis EngineBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for EngineBackend.
func (b *EngineBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*b = EngineBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid EngineBackend: %q (valid options: memory, redis)", v)
	}
}

// CacheConfig contains cache engine limits shared by every backend.
type CacheConfig struct {
	// MaxBytes caps total memory held by the memory engine. Zero is unlimited.
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"1073741824"`

	// MaxValueBytes rejects single values larger than this. Zero is unlimited.
	MaxValueBytes int `env:"MAX_VALUE_BYTES" envDefault:"0"`

	// HardMemoryLimit rejects writes over MaxBytes instead of evicting least recently used entries.
	HardMemoryLimit bool `env:"HARD_MEMORY_LIMIT" envDefault:"false"`

	Buckets int `env:"BUCKETS" envDefault:"32"`

	// DefaultTTL applies when a write has no expires_in. Zero means no expiry.
	DefaultTTL time.Duration `env:"DEFAULT_TTL" envDefault:"0s"`

	// MaxTTL clamps every expiry. Zero is unlimited.
	MaxTTL time.Duration `env:"MAX_TTL" envDefault:"0s"`

	// ExpiryInterval is how often the memory engine sweeps expired entries.
	ExpiryInterval time.Duration `env:"EXPIRY_INTERVAL" envDefault:"60s"`
}

// Sanitize applies guardrails to cache limits.
func (c *CacheConfig) Sanitize() {
	if c.Buckets < 1 {
		c.Buckets = 32
	}
	if c.MaxBytes < 0 {
		c.MaxBytes = 0
	}
	if c.MaxValueBytes < 0 {
		c.MaxValueBytes = 0
	}
	if c.DefaultTTL < 0 {
		c.DefaultTTL = 0
	}
	if c.MaxTTL < 0 {
		c.MaxTTL = 0
	}
	if c.ExpiryInterval <= 0 {
		c.ExpiryInterval = 60 * time.Second
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	KeyPrefix          string   `env:"KEY_PREFIX"           envDefault:"cachegate:"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Sanitize restores the default key prefix when blank.
func (c *RedisConfig) Sanitize() {
	if strings.TrimSpace(c.KeyPrefix) == "" {
		c.KeyPrefix = "cachegate:"
	}
}

// EngineConfig selects and configures the cache engine.
type EngineConfig struct {
	Backend EngineBackend `env:"ENGINE_BACKEND" envDefault:"memory"`
	Cache   CacheConfig   `envPrefix:"CACHE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
}

// Sanitize applies guardrails to engine sub-configs.
func (c *EngineConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = EngineMemory
	}
	c.Cache.Sanitize()
	c.Redis.Sanitize()
}

// IsShared reports whether the engine is reachable from other processes.
func (c *EngineConfig) IsShared() bool {
	return c.Backend == EngineRedis
}
