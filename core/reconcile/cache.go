package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader builds a cached value.
type Loader[T any] func(ctx context.Context) (T, error)

type cacheEntry[T any] struct {
	value T
	built time.Time
}

// Cache holds values keyed by string for a TTL, with stampede protection.
// A zero TTL disables caching: every Get calls the loader.
type Cache[T any] struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	sf      singleflight.Group
	now     func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[T]),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or builds it with load when missing or expired.
// Concurrent misses for the same key share a single load.
func (c *Cache[T]) Get(ctx context.Context, key string, load Loader[T]) (T, error) {
	if c.ttl <= 0 {
		return load(ctx)
	}

	// Fast path: check if entry exists and is fresh
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight slot
		if v, ok := c.fresh(key); ok {
			return v, nil
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry[T]{value: v, built: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate drops key so the next Get rebuilds it.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache[T]) fresh(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.built) > c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}
