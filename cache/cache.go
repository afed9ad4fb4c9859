// Package cache wraps Ristretto for short-lived leaderboard snapshots.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// Cache is a TTL'd in-process cache for computed leaderboard views.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// Options configures the cache.
type Options struct {
	MaxSizeMB   int
	TTL         time.Duration
	CounterSize int64
}

// New creates a cache instance. A nil *Cache is a valid no-op cache, so
// callers never need to branch on whether caching is enabled.
func New(opts Options) (*Cache, error) {
	maxCost := int64(opts.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.CounterSize,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", opts.MaxSizeMB).
		Dur("ttl", opts.TTL).
		Msg("Cache initialized")

	return &Cache{client: client, ttl: opts.TTL}, nil
}

// Get retrieves a value. Returns (nil, false) on a nil cache.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	return c.client.Get(key)
}

// Set stores a value with the configured TTL. cost is the approximate
// memory cost of the item.
func (c *Cache) Set(key string, value interface{}, cost int64) bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.client.SetWithTTL(key, value, cost, c.ttl)
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(key)
}

// Clear drops every cached entry. Used when the underlying data is
// replaced wholesale and any cached view would be stale.
func (c *Cache) Clear() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Clear()
}

// Close shuts the cache down.
func (c *Cache) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Close()
	log.Info().Msg("Cache closed")
}

// MetricsSnapshot is a copyable view of cache performance counters.
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keysAdded"`
	KeysEvicted uint64  `json:"keysEvicted"`
	HitRatio    float64 `json:"hitRatio"`
	TTLSeconds  int     `json:"ttlSeconds"`
}

// Metrics returns current cache metrics.
func (c *Cache) Metrics() MetricsSnapshot {
	if c == nil || c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{}
	}

	m := c.client.Metrics
	hits, misses := m.Hits(), m.Misses()
	ratio := 0.0
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return MetricsSnapshot{
		Hits:        hits,
		Misses:      misses,
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		HitRatio:    ratio,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
