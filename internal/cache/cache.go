// Package cache provides a process-local TTL cache with per-key
// single-flight fetching: overlapping requests for the same key share
// one underlying fetch instead of issuing duplicates.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Options tune cache behavior.
type Options struct {
	// StaleFallback allows serving an expired entry when a refresh
	// fails, as long as the entry is younger than MaxStale.
	StaleFallback bool
	MaxStale      time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Cache stores the most recent successful fetch per key. A failed fetch
// never overwrites a cached value.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	staleFallback bool
	maxStale      time.Duration
	now           func() time.Time
}

// New creates an empty Cache.
func New(opts Options) *Cache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries:       make(map[string]entry),
		staleFallback: opts.StaleFallback,
		maxStale:      opts.MaxStale,
		now:           now,
	}
}

// GetOrFetch returns the cached value for key when its age is below
// ttl; otherwise it runs fetch, stores the result on success, and
// returns it. Concurrent callers for the same key join the in-flight
// fetch. A ttl of 0 forces a refresh while still joining any fetch
// already in flight. On fetch failure the cached value is left intact
// and the error is returned, unless stale fallback is enabled and a
// sufficiently young entry exists.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.fresh(key, ttl); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check after acquiring the flight: a caller that raced a
		// just-completed fetch should not trigger another one.
		if v, ok := c.fresh(key, ttl); ok {
			return v, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			if c.staleFallback {
				if sv, ok := c.fresh(key, c.maxStale); ok {
					return sv, nil
				}
			}
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// fresh returns the cached value when its age is strictly below ttl.
func (c *Cache) fresh(key string, ttl time.Duration) (any, bool) {
	if ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// GetOrFetch is the typed wrapper around Cache.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
