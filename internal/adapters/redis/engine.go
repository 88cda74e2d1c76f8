// Package redis provides a Redis-backed cache engine shared by every gateway process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cachegate/cachegate/internal/core"
	"github.com/cachegate/cachegate/internal/domain/query"
	"github.com/cachegate/cachegate/internal/engine/scope"
)

const (
	// DefaultPrefix namespaces every Redis key the engine writes.
	DefaultPrefix = "cachegate:"

	scanCount    = 500
	metricHits   = "hits"
	metricMisses = "misses"
	metricReject = "rejected"
)

// Options configures an Engine.
type Options struct {
	Prefix        string
	MaxValueBytes int
	DefaultTTL    time.Duration
	MaxTTL        time.Duration
	Clock         core.TimeProvider
	Logger        *slog.Logger
}

// Engine implements core.Engine on Redis. Entries are JSON envelopes stored under
// <prefix>e:<entry address>; touch counts (keyed by entry address) and counters live in
// hashes under <prefix>m:.
type Engine struct {
	client redis.UniversalClient
	opts   Options
	clock  core.TimeProvider
	logger *slog.Logger
}

var _ core.Engine = (*Engine)(nil)

type envelope struct {
	Key       string          `json:"key"`
	Namespace string          `json:"namespace,omitempty"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEngine creates a Redis engine over client.
func NewEngine(client redis.UniversalClient, opts Options) *Engine {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client: client,
		opts:   opts,
		clock:  clock,
		logger: logger.With("component", "redis_engine"),
	}
}

func (e *Engine) entryKey(addr string) string { return e.opts.Prefix + "e:" + addr }
func (e *Engine) entryPrefix() string         { return e.opts.Prefix + "e:" }
func (e *Engine) touchesKey() string          { return e.opts.Prefix + "m:touches" }
func (e *Engine) metricsKey() string          { return e.opts.Prefix + "m:metrics" }

func (e *Engine) incrMetric(ctx context.Context, field string) {
	if err := e.client.HIncrBy(ctx, e.metricsKey(), field, 1).Err(); err != nil {
		e.logger.DebugContext(ctx, "metric increment failed", "metric", field, "error", err)
	}
}

func (e *Engine) load(ctx context.Context, addr string) (*envelope, error) {
	raw, err := e.client.Get(ctx, e.entryKey(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", addr, err)
	}
	return &env, nil
}

func (e *Engine) Read(ctx context.Context, key, namespace string) (any, bool, error) {
	addr := core.EntryAddress(key, namespace)
	env, err := e.load(ctx, addr)
	if err != nil {
		return nil, false, err
	}
	if env == nil {
		e.incrMetric(ctx, metricMisses)
		return nil, false, nil
	}

	_, err = e.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, e.touchesKey(), addr, 1)
		p.HIncrBy(ctx, e.metricsKey(), metricHits, 1)
		return nil
	})
	if err != nil {
		e.logger.DebugContext(ctx, "touch accounting failed", "key", core.FullKey(key, namespace), "error", err)
	}

	value, err := core.DecodeValue(env.Value)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", core.FullKey(key, namespace), err)
	}
	return value, true, nil
}

func (e *Engine) effectiveTTL(requested time.Duration) time.Duration {
	ttl := requested
	if ttl <= 0 {
		ttl = e.opts.DefaultTTL
	}
	if ttl > 0 && e.opts.MaxTTL > 0 && ttl > e.opts.MaxTTL {
		ttl = e.opts.MaxTTL
	}
	return ttl
}

func (e *Engine) Write(ctx context.Context, req core.WriteRequest) error {
	value, err := json.Marshal(req.Value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	if e.opts.MaxValueBytes > 0 && len(value) > e.opts.MaxValueBytes {
		e.incrMetric(ctx, metricReject)
		return core.ErrValueTooLarge
	}

	data, err := json.Marshal(envelope{
		Key:       req.Key,
		Namespace: req.Namespace,
		Value:     value,
		CreatedAt: e.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	addr := core.EntryAddress(req.Key, req.Namespace)
	if err := e.client.Set(ctx, e.entryKey(addr), data, e.effectiveTTL(req.ExpiresIn)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (e *Engine) Delete(ctx context.Context, key, namespace string) (bool, error) {
	addr := core.EntryAddress(key, namespace)
	n, err := e.client.Del(ctx, e.entryKey(addr)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	if err := e.client.HDel(ctx, e.touchesKey(), addr).Err(); err != nil {
		return false, fmt.Errorf("redis hdel: %w", err)
	}
	return n > 0, nil
}

func (e *Engine) Exists(ctx context.Context, key, namespace string) (bool, error) {
	n, err := e.client.Exists(ctx, e.entryKey(core.EntryAddress(key, namespace))).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (e *Engine) Inspect(ctx context.Context, key, namespace string) (*core.EntryInfo, error) {
	addr := core.EntryAddress(key, namespace)
	env, err := e.load(ctx, addr)
	if err != nil || env == nil {
		return nil, err
	}

	ttl, err := e.client.PTTL(ctx, e.entryKey(addr)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis pttl: %w", err)
	}
	touches, err := e.client.HGet(ctx, e.touchesKey(), addr).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis hget: %w", err)
	}

	info := &core.EntryInfo{
		Key:       key,
		Namespace: namespace,
		CreatedAt: env.CreatedAt,
		SizeBytes: len(env.Value),
		Touches:   touches,
	}
	if ttl > 0 {
		exp := e.clock.Now().UTC().Add(ttl)
		info.ExpiresAt = &exp
	}
	return info, nil
}

// scan collects every Redis key matching pattern. Cluster clients are scanned master by master.
func (e *Engine) scan(ctx context.Context, pattern string) ([]string, error) {
	scanNode := func(ctx context.Context, c redis.Cmdable) ([]string, error) {
		var keys []string
		iter := c.Scan(ctx, 0, pattern, scanCount).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return keys, iter.Err()
	}

	cluster, ok := e.client.(*redis.ClusterClient)
	if !ok {
		keys, err := scanNode(ctx, e.client)
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		return keys, nil
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		nodeKeys, err := scanNode(ctx, node)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, nodeKeys...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// loadMatching returns the envelopes stored under Redis keys matching pattern, keyed by Redis key.
func (e *Engine) loadMatching(ctx context.Context, pattern string) (map[string]*envelope, error) {
	redisKeys, err := e.scan(ctx, pattern)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*envelope, len(redisKeys))
	for _, rk := range redisKeys {
		raw, err := e.client.Get(ctx, rk).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and get
			}
			return nil, fmt.Errorf("redis get: %w", err)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rk, err)
		}
		out[rk] = &env
	}
	return out, nil
}

// namespaceEntries returns the envelopes of namespace keyed by their Redis key.
func (e *Engine) namespaceEntries(ctx context.Context, namespace string) (map[string]*envelope, error) {
	pattern := escapeGlob(e.entryPrefix()+core.EntryAddress("", namespace)) + "*"
	entries, err := e.loadMatching(ctx, pattern)
	if err != nil {
		return nil, err
	}
	for rk, env := range entries {
		if env.Namespace != namespace {
			delete(entries, rk)
		}
	}
	return entries, nil
}

func (e *Engine) Keys(ctx context.Context, namespace string) ([]string, error) {
	entries, err := e.namespaceEntries(ctx, namespace)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, env := range entries {
		keys = append(keys, env.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (e *Engine) ClearNamespace(ctx context.Context, namespace string) error {
	entries, err := e.namespaceEntries(ctx, namespace)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	_, err = e.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for rk, env := range entries {
			p.Del(ctx, rk)
			p.HDel(ctx, e.touchesKey(), core.EntryAddress(env.Key, env.Namespace))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis clear namespace: %w", err)
	}
	return nil
}

func (e *Engine) LeastTouched(ctx context.Context, n int) ([]core.TouchCount, error) {
	if n <= 0 {
		return []core.TouchCount{}, nil
	}
	addrs, err := e.addresses(ctx)
	if err != nil {
		return nil, err
	}
	counts := make([]core.TouchCount, 0, len(addrs))
	if len(addrs) > 0 {
		vals, err := e.client.HMGet(ctx, e.touchesKey(), addrs...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis hmget: %w", err)
		}
		for i, addr := range addrs {
			key, namespace, _ := core.ParseEntryAddress(addr)
			counts = append(counts, core.TouchCount{Key: core.FullKey(key, namespace), Touches: parseCount(vals[i])})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Touches != counts[j].Touches {
			return counts[i].Touches < counts[j].Touches
		}
		return counts[i].Key < counts[j].Key
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}

// addresses lists the entry address of every stored entry. Keys that do not parse are skipped.
func (e *Engine) addresses(ctx context.Context) ([]string, error) {
	redisKeys, err := e.scan(ctx, escapeGlob(e.entryPrefix())+"*")
	if err != nil {
		return nil, err
	}
	addrs := make([]string, 0, len(redisKeys))
	for _, rk := range redisKeys {
		addr := strings.TrimPrefix(rk, e.entryPrefix())
		if _, _, ok := core.ParseEntryAddress(addr); ok {
			addrs = append(addrs, addr)
		}
	}
	return addrs, nil
}

func (e *Engine) AllKeys(ctx context.Context) ([]string, error) {
	addrs, err := e.addresses(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		key, namespace, _ := core.ParseEntryAddress(addr)
		keys = append(keys, core.FullKey(key, namespace))
	}
	sort.Strings(keys)
	return keys, nil
}

func (e *Engine) Metrics(ctx context.Context) (*core.Metrics, error) {
	counters, err := e.client.HGetAll(ctx, e.metricsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	entries, err := e.loadMatching(ctx, escapeGlob(e.entryPrefix())+"*")
	if err != nil {
		return nil, err
	}

	m := &core.Metrics{
		Hits:     parseCount(counters[metricHits]),
		Misses:   parseCount(counters[metricMisses]),
		Rejected: parseCount(counters[metricReject]),
		Keys:     int64(len(entries)),
	}
	for _, env := range entries {
		m.TotalMemory += int64(len(env.Value))
	}
	return m, nil
}

func (e *Engine) ResetMetrics(ctx context.Context) error {
	if err := e.client.Del(ctx, e.metricsKey()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (e *Engine) Reset(ctx context.Context) error {
	redisKeys, err := e.scan(ctx, escapeGlob(e.opts.Prefix)+"*")
	if err != nil {
		return err
	}
	if len(redisKeys) == 0 {
		return nil
	}
	_, err = e.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, rk := range redisKeys {
			p.Del(ctx, rk)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis reset: %w", err)
	}
	return nil
}

func (e *Engine) Scope(namespace string) query.Scope {
	return scope.New(func(ctx context.Context) ([]query.Record, error) {
		entries, err := e.namespaceEntries(ctx, namespace)
		if err != nil {
			return nil, err
		}
		envs := make([]*envelope, 0, len(entries))
		for _, env := range entries {
			envs = append(envs, env)
		}
		sort.Slice(envs, func(i, j int) bool { return envs[i].Key < envs[j].Key })

		records := make([]query.Record, 0, len(envs))
		for _, env := range envs {
			value, err := core.DecodeValue(env.Value)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", core.FullKey(env.Key, namespace), err)
			}
			records = append(records, scope.NewRecord(env.Key, value))
		}
		return records, nil
	})
}

func parseCount(v any) int64 {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case nil:
		return 0
	default:
		s = fmt.Sprint(t)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
