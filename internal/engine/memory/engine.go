// Package memory provides an in-process cache engine with namespaces, TTL expiry,
// LRU eviction and touch accounting.
package memory

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/cachegate/cachegate/internal/core"
	"github.com/cachegate/cachegate/internal/domain/query"
	"github.com/cachegate/cachegate/internal/engine/scope"
)

const defaultBuckets = 32

// Options configures an Engine.
type Options struct {
	// Buckets is the number of independently locked shards.
	Buckets int
	// MaxBytes caps the serialized size held by the engine, split evenly across buckets. Zero is unlimited.
	MaxBytes int64
	// MaxValueBytes rejects single values larger than this. Zero is unlimited.
	MaxValueBytes int
	// HardMemoryLimit rejects writes that would exceed MaxBytes instead of evicting.
	HardMemoryLimit bool
	// DefaultTTL applies when a write carries no expiry. Zero means entries never expire.
	DefaultTTL time.Duration
	// MaxTTL clamps every expiry. Zero is unlimited.
	MaxTTL time.Duration
	// ExpiryInterval is the sweeper period.
	ExpiryInterval time.Duration

	Clock  core.TimeProvider
	Logger *slog.Logger
}

// address identifies an entry by namespace and key, never by their joined form.
type address struct {
	namespace string
	key       string
}

type entry struct {
	addr      address
	fullKey   string
	key       string
	namespace string
	data      []byte
	createdAt time.Time
	expiresAt time.Time
	touches   int64
	elem      *list.Element
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type bucket struct {
	mu      sync.Mutex
	entries map[address]*entry
	lru     *list.List // front is most recently used
	size    int64
}

// Engine is a sharded in-memory implementation of core.Engine. It is safe for concurrent use.
type Engine struct {
	buckets   []*bucket
	opts      Options
	bucketMax int64
	clock     core.TimeProvider
	logger    *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	rejected  atomic.Int64
}

var _ core.Engine = (*Engine)(nil)

// New creates an Engine with opts, applying defaults for unset fields.
func New(opts Options) *Engine {
	if opts.Buckets <= 0 {
		opts.Buckets = defaultBuckets
	}
	if opts.ExpiryInterval <= 0 {
		opts.ExpiryInterval = time.Minute
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		buckets: make([]*bucket, opts.Buckets),
		opts:    opts,
		clock:   clock,
		logger:  logger.With("component", "memory_engine"),
	}
	for i := range e.buckets {
		e.buckets[i] = &bucket{entries: make(map[address]*entry), lru: list.New()}
	}
	if opts.MaxBytes > 0 {
		e.bucketMax = opts.MaxBytes / int64(opts.Buckets)
		if e.bucketMax <= 0 {
			e.bucketMax = 1
		}
	}
	return e
}

func (e *Engine) bucketIndex(a address) int {
	return int(xxhash.Sum64String(core.EntryAddress(a.key, a.namespace)) % uint64(len(e.buckets)))
}

func (e *Engine) bucketFor(a address) *bucket {
	return e.buckets[e.bucketIndex(a)]
}

// removeLocked drops an entry; the bucket lock must be held.
func (b *bucket) removeLocked(ent *entry) {
	delete(b.entries, ent.addr)
	b.lru.Remove(ent.elem)
	b.size -= int64(len(ent.data))
}

// liveLocked returns the entry at a, removing it when expired; the bucket lock must be held.
func (b *bucket) liveLocked(a address, now time.Time) *entry {
	ent, ok := b.entries[a]
	if !ok {
		return nil
	}
	if ent.expired(now) {
		b.removeLocked(ent)
		return nil
	}
	return ent
}

func (e *Engine) Read(_ context.Context, key, namespace string) (any, bool, error) {
	a := address{namespace: namespace, key: key}
	b := e.bucketFor(a)

	b.mu.Lock()
	ent := b.liveLocked(a, e.clock.Now())
	if ent == nil {
		b.mu.Unlock()
		e.misses.Add(1)
		return nil, false, nil
	}
	ent.touches++
	b.lru.MoveToFront(ent.elem)
	data := ent.data
	b.mu.Unlock()

	e.hits.Add(1)

	value, err := core.DecodeValue(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", core.FullKey(key, namespace), err)
	}
	return value, true, nil
}

// effectiveTTL resolves a requested expiry against the default and maximum TTLs.
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

func (e *Engine) Write(_ context.Context, req core.WriteRequest) error {
	data, err := json.Marshal(req.Value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	if e.opts.MaxValueBytes > 0 && len(data) > e.opts.MaxValueBytes {
		e.rejected.Add(1)
		return core.ErrValueTooLarge
	}

	a := address{namespace: req.Namespace, key: req.Key}
	now := e.clock.Now()
	ent := &entry{
		addr:      a,
		fullKey:   core.FullKey(req.Key, req.Namespace),
		key:       req.Key,
		namespace: req.Namespace,
		data:      data,
		createdAt: now,
	}
	if ttl := e.effectiveTTL(req.ExpiresIn); ttl > 0 {
		ent.expiresAt = now.Add(ttl)
	}

	b := e.bucketFor(a)
	b.mu.Lock()
	defer b.mu.Unlock()

	need := int64(len(data))
	old := b.entries[a]

	// Nothing is removed until the write is known to fit.
	if e.bucketMax > 0 {
		if need > e.bucketMax {
			e.rejected.Add(1)
			return core.ErrValueTooLarge
		}
		remaining := b.size
		if old != nil {
			remaining -= int64(len(old.data))
		}
		if e.opts.HardMemoryLimit && remaining+need > e.bucketMax {
			e.rejected.Add(1)
			return core.ErrCacheFull
		}
	}

	if old != nil {
		if !old.expired(now) {
			ent.touches = old.touches
		}
		b.removeLocked(old)
	}
	for e.bucketMax > 0 && b.size+need > e.bucketMax && b.lru.Len() > 0 {
		victim, _ := b.lru.Back().Value.(*entry)
		b.removeLocked(victim)
		e.evictions.Add(1)
	}

	ent.elem = b.lru.PushFront(ent)
	b.entries[a] = ent
	b.size += need
	return nil
}

func (e *Engine) Delete(_ context.Context, key, namespace string) (bool, error) {
	a := address{namespace: namespace, key: key}
	b := e.bucketFor(a)

	b.mu.Lock()
	defer b.mu.Unlock()

	ent := b.liveLocked(a, e.clock.Now())
	if ent == nil {
		return false, nil
	}
	b.removeLocked(ent)
	return true, nil
}

func (e *Engine) Exists(_ context.Context, key, namespace string) (bool, error) {
	a := address{namespace: namespace, key: key}
	b := e.bucketFor(a)

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.liveLocked(a, e.clock.Now()) != nil, nil
}

func (e *Engine) Inspect(_ context.Context, key, namespace string) (*core.EntryInfo, error) {
	a := address{namespace: namespace, key: key}
	idx := e.bucketIndex(a)
	b := e.buckets[idx]

	b.mu.Lock()
	defer b.mu.Unlock()

	ent := b.liveLocked(a, e.clock.Now())
	if ent == nil {
		return nil, nil
	}
	info := &core.EntryInfo{
		Key:       key,
		Namespace: namespace,
		CreatedAt: ent.createdAt,
		SizeBytes: len(ent.data),
		Touches:   ent.touches,
		Bucket:    &idx,
	}
	if !ent.expiresAt.IsZero() {
		exp := ent.expiresAt
		info.ExpiresAt = &exp
	}
	return info, nil
}

// each calls fn for every live entry, bucket by bucket, under that bucket's lock.
func (e *Engine) each(fn func(*entry)) {
	now := e.clock.Now()
	for _, b := range e.buckets {
		b.mu.Lock()
		for _, ent := range b.entries {
			if !ent.expired(now) {
				fn(ent)
			}
		}
		b.mu.Unlock()
	}
}

func (e *Engine) Keys(_ context.Context, namespace string) ([]string, error) {
	keys := []string{}
	e.each(func(ent *entry) {
		if ent.namespace == namespace {
			keys = append(keys, ent.key)
		}
	})
	sort.Strings(keys)
	return keys, nil
}

func (e *Engine) ClearNamespace(_ context.Context, namespace string) error {
	for _, b := range e.buckets {
		b.mu.Lock()
		for _, ent := range b.entries {
			if ent.namespace == namespace {
				b.removeLocked(ent)
			}
		}
		b.mu.Unlock()
	}
	return nil
}

func (e *Engine) LeastTouched(_ context.Context, n int) ([]core.TouchCount, error) {
	if n <= 0 {
		return []core.TouchCount{}, nil
	}
	counts := []core.TouchCount{}
	e.each(func(ent *entry) {
		counts = append(counts, core.TouchCount{Key: ent.fullKey, Touches: ent.touches})
	})
	sortTouchCounts(counts)
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}

func sortTouchCounts(counts []core.TouchCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Touches != counts[j].Touches {
			return counts[i].Touches < counts[j].Touches
		}
		return counts[i].Key < counts[j].Key
	})
}

func (e *Engine) AllKeys(_ context.Context) ([]string, error) {
	keys := []string{}
	e.each(func(ent *entry) {
		keys = append(keys, ent.fullKey)
	})
	sort.Strings(keys)
	return keys, nil
}

func (e *Engine) Metrics(_ context.Context) (*core.Metrics, error) {
	m := &core.Metrics{
		Hits:      e.hits.Load(),
		Misses:    e.misses.Load(),
		Evictions: e.evictions.Load(),
		Rejected:  e.rejected.Load(),
	}
	now := e.clock.Now()
	for _, b := range e.buckets {
		b.mu.Lock()
		m.TotalMemory += b.size
		for _, ent := range b.entries {
			if !ent.expired(now) {
				m.Keys++
			}
		}
		b.mu.Unlock()
	}
	return m, nil
}

func (e *Engine) ResetMetrics(_ context.Context) error {
	e.hits.Store(0)
	e.misses.Store(0)
	e.evictions.Store(0)
	e.rejected.Store(0)
	return nil
}

func (e *Engine) Reset(ctx context.Context) error {
	for _, b := range e.buckets {
		b.mu.Lock()
		b.entries = make(map[address]*entry)
		b.lru.Init()
		b.size = 0
		b.mu.Unlock()
	}
	return e.ResetMetrics(ctx)
}

// Scope opens a query scope over namespace. Query evaluation does not count as a touch.
func (e *Engine) Scope(namespace string) query.Scope {
	return scope.New(func(context.Context) ([]query.Record, error) {
		type raw struct {
			key  string
			data []byte
		}
		var rows []raw
		e.each(func(ent *entry) {
			if ent.namespace == namespace {
				rows = append(rows, raw{key: ent.key, data: ent.data})
			}
		})
		sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })

		records := make([]query.Record, 0, len(rows))
		for _, r := range rows {
			value, err := core.DecodeValue(r.data)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", core.FullKey(r.key, namespace), err)
			}
			records = append(records, scope.NewRecord(r.key, value))
		}
		return records, nil
	})
}
