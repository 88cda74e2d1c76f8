// Package core defines the ports between the gateway services and the cache engine adapters.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cachegate/cachegate/internal/domain/query"
	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// This file contains the cache engine port (hexagonal architecture).
// Services depend on Engine; the memory and redis adapters provide implementations.

// Engine is the command set of a cache engine. Values are JSON-shaped (the result of decoding a
// request body) and are returned in the same shape.
type Engine interface {
	// Read returns the value stored under key, and false when it is absent or expired.
	Read(ctx context.Context, key, namespace string) (any, bool, error)

	// Write stores value under key. A zero ExpiresIn uses the engine default TTL.
	Write(ctx context.Context, req WriteRequest) error

	// Delete removes a key and reports whether it existed.
	Delete(ctx context.Context, key, namespace string) (bool, error)

	// Exists reports whether a live entry is stored under key.
	Exists(ctx context.Context, key, namespace string) (bool, error)

	// Inspect returns entry metadata, or nil when the key is absent.
	Inspect(ctx context.Context, key, namespace string) (*EntryInfo, error)

	// Keys lists the live keys of a namespace, without the namespace prefix.
	Keys(ctx context.Context, namespace string) ([]string, error)

	// ClearNamespace removes every entry of a namespace.
	ClearNamespace(ctx context.Context, namespace string) error

	// LeastTouched returns up to n keys with the lowest touch counts, ascending.
	LeastTouched(ctx context.Context, n int) ([]TouchCount, error)

	// AllKeys lists every live full key.
	AllKeys(ctx context.Context) ([]string, error)

	Metrics(ctx context.Context) (*Metrics, error)
	ResetMetrics(ctx context.Context) error

	// Reset removes all entries and metrics.
	Reset(ctx context.Context) error

	// Scope opens a query scope over the entries of namespace.
	Scope(namespace string) query.Scope
}

// WriteRequest groups parameters for Engine.Write.
type WriteRequest struct {
	Key       string
	Value     any
	ExpiresIn time.Duration
	Namespace string
}

// EntryInfo describes a stored entry without its value.
type EntryInfo struct {
	Key       string     `json:"key"`
	Namespace string     `json:"namespace,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	SizeBytes int        `json:"size_bytes"`
	Touches   int64      `json:"touches"`
	Bucket    *int       `json:"bucket,omitempty"`
}

// TouchCount pairs a full key with its access count. It renders as a two-element JSON array.
type TouchCount struct {
	Key     string
	Touches int64
}

// MarshalJSON renders the pair as [key, touches].
func (t TouchCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.Key, t.Touches})
}

// Metrics holds aggregate engine counters.
type Metrics struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Rejected    int64 `json:"rejected"`
	TotalMemory int64 `json:"total_memory"`
	Keys        int64 `json:"keys"`
}

// FullKey joins a namespace and key for display (all_keys, least_touched).
// It is not an address: "a" + "b:c" and "a:b" + "c" render the same.
func FullKey(key, namespace string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}

// EntryAddress is the storage address of a (namespace, key) pair. The namespace is
// length-prefixed, so distinct pairs never share an address.
func EntryAddress(key, namespace string) string {
	return strconv.Itoa(len(namespace)) + ":" + namespace + ":" + key
}

// ParseEntryAddress splits an address produced by EntryAddress.
func ParseEntryAddress(addr string) (key, namespace string, ok bool) {
	size, rest, found := strings.Cut(addr, ":")
	if !found {
		return "", "", false
	}
	n, err := strconv.Atoi(size)
	if err != nil || n < 0 || len(rest) < n+1 || rest[n] != ':' {
		return "", "", false
	}
	return rest[n+1:], rest[:n], true
}

// DecodeValue decodes a stored or submitted JSON value. Numbers stay json.Number so
// integers beyond float64 precision survive a write and read back unchanged.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}

var (
	// ErrValueTooLarge is returned when a serialized value exceeds the engine's per-value limit.
	ErrValueTooLarge = apperrors.Validation("value exceeds the maximum value size")
	// ErrCacheFull is returned when a write would exceed a hard memory limit.
	ErrCacheFull = apperrors.Internal("cache memory limit reached")
)
