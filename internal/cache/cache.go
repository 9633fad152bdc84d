// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

// Package cache holds trained model artifacts keyed by a fingerprint of the
// data they were trained on.
//
// A model is built completely before it is stored, and concurrent requests for
// the same key share one build, so readers never observe a partially trained
// model. Entries expire after the cache TTL, and a bounded cache drops the
// entry closest to expiry when it is full.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/tillsight/internal/metrics"
)

// Entry represents a cached value with expiration.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a thread-safe TTL cache with per-key build deduplication.
//
// Builds for the same key are collapsed with golang.org/x/sync/singleflight:
// the first caller runs the build, later callers wait on its result. A build
// that returns an error or panics is never stored, and the key is free for the
// next caller to retry.
type Cache[V any] struct {
	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]Entry[V]
	stats   Stats

	group singleflight.Group
}

// New creates an unbounded cache with the given TTL.
//
// Parameters:
//   - name: value of the cache_type label on the cache metrics
//   - ttl: lifetime of every stored entry
//
// Returns:
//   - Pointer to an empty Cache. No background goroutine is started; run
//     RunCleanup under a supervisor to evict expired entries.
//
// Example:
//
//	segments := cache.New[*segmentation]("segmentation_models", time.Hour)
//	go segments.RunCleanup(ctx, 5*time.Minute)
func New[V any](name string, ttl time.Duration) *Cache[V] {
	return NewBounded[V](name, ttl, 0)
}

// NewBounded creates a cache that holds at most maxEntries values.
//
// When a new key is stored into a full cache, expired entries are dropped
// first and then the entry with the earliest expiry. A non-positive
// maxEntries means unbounded.
//
// Example:
//
//	// At most 8 mined rule sets, whatever the query strings ask for.
//	baskets := cache.NewBounded[*analytics.BasketResult]("basket_rules", time.Hour, 8)
func NewBounded[V any](name string, ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		name:       name,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]Entry[V]),
		stats:      Stats{LastCleanup: time.Now()},
	}
}

// Get retrieves the live value for key.
//
// Behavior:
//   - Returns (zero, false) if key doesn't exist
//   - Returns (zero, false) if the entry has expired (the entry is deleted)
//   - Returns (value, true) otherwise
//
// Statistics: increments Hits, or Misses (and Evictions on expiry).
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache[V]) getLocked(key string) (V, bool) {
	var zero V
	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}
	if c.now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		c.updateSizeLocked()
		return zero, false
	}
	c.stats.Hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return entry.Value, true
}

// peekLocked is getLocked without statistics.
func (c *Cache[V]) peekLocked(key string) (V, bool) {
	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.ExpiresAt) {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key with the cache TTL, overwriting any existing
// entry. A bounded cache evicts before inserting a new key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *Cache[V]) setLocked(key string, value V) {
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 {
		for len(c.entries) >= c.maxEntries {
			c.evictOneLocked()
		}
	}
	c.entries[key] = Entry[V]{Value: value, ExpiresAt: c.now().Add(c.ttl)}
	c.updateSizeLocked()
}

// evictOneLocked removes an expired entry if there is one, else the entry
// that expires first.
func (c *Cache[V]) evictOneLocked() {
	now := c.now()
	var victim string
	var earliest time.Time
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			victim = key
			break
		}
		if victim == "" || entry.ExpiresAt.Before(earliest) {
			victim, earliest = key, entry.ExpiresAt
		}
	}
	delete(c.entries, victim)
	c.stats.Evictions++
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
}

// GetOrBuild returns the cached value for key, or runs build and stores its
// result.
//
// Parameters:
//   - ctx: bounds how long this caller waits; canceling it does not stop a
//     build that is already running for other waiters
//   - key: cache key, normally from GenerateKey
//   - build: produces the value; it runs at most once at a time per key
//
// Returns:
//   - value: the cached or freshly built value
//   - cached: true when the value came from the cache without a build
//   - err: the build error, a recovered build panic, or ctx.Err()
//
// Behavior:
//   - Callers asking for a key that is already being built wait for that
//     build instead of starting another
//   - Build errors are returned to every waiter and are not cached
//   - A panicking build is converted to an error; the key is released
//
// Example:
//
//	model, cached, err := c.GetOrBuild(ctx, key, func() (*Model, error) {
//	    return train(rows)
//	})
func (c *Cache[V]) GetOrBuild(ctx context.Context, key string, build func() (V, error)) (value V, cached bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that finished between Get and DoChan already stored it.
		c.mu.Lock()
		if v, ok := c.peekLocked(key); ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		v, err := safeBuild(key, build)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, false, res.Err
		}
		v, _ := res.Val.(V)
		return v, false, nil
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	}
}

// safeBuild runs build, turning a panic into an error so that singleflight
// never sees one.
func safeBuild[V any](key string, build func() (V, error)) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build %s panicked: %v", key, r)
		}
	}()
	return build()
}

// Delete removes key. It is a no-op for a missing key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.stats.Evictions++
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		c.updateSizeLocked()
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the counters.
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns hits as a percentage of lookups (0-100).
func (c *Cache[V]) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// RunCleanup removes expired entries every interval until ctx is done.
//
// It blocks, so run it in its own goroutine or from a supervised service:
//
//	go c.RunCleanup(ctx, 5*time.Minute)
func (c *Cache[V]) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
			metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		}
	}
	c.stats.LastCleanup = now
	c.updateSizeLocked()
}

func (c *Cache[V]) updateSizeLocked() {
	c.stats.TotalKeys = int64(len(c.entries))
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.entries)))
}

// GenerateKey derives a stable key from method and the JSON encoding of params.
//
// Keys have the form "method:<first 16 bytes of sha256 in hex>". If params
// cannot be encoded the key falls back to fmt formatting.
//
//	key := cache.GenerateKey("segmentation", features)
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
