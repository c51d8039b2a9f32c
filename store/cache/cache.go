// Package cache provides the in-process caches backing the store: a
// concurrent TTL cache for entities and query results, an optional redis L2,
// and a tiered combination of the two.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the cache configuration.
type Config struct {
	// DefaultTTL is the expiration applied by Set. Zero means no expiration.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired items are purged. Zero disables
	// the background cleaner.
	CleanupInterval time.Duration
	// MaxItems bounds the number of entries. Zero means unbounded.
	MaxItems int
	// OnEviction, when set, is called with each evicted key/value.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time // zero = never expires
}

func (i *item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Cache is a concurrent key-value cache with TTL support. Readers never block
// writers; all methods are safe for concurrent use.
type Cache struct {
	config Config
	data   sync.Map
	size   atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a cache and starts its cleanup goroutine when a cleanup
// interval is configured. Close must be called to stop it.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	now := time.Now()
	c.data.Range(func(key, value any) bool {
		if it, ok := value.(*item); ok && it.expired(now) {
			c.remove(key.(string), it)
		}
		return true
	})
}

func (c *Cache) remove(key string, it *item) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, it.value)
		}
	}
}

// Get returns the value for key, reporting whether it was present and fresh.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	value, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}
	it := value.(*item)
	if it.expired(time.Now()) {
		c.remove(key, it)
		return nil, false
	}
	return it.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL. A zero ttl stores
// the value without expiration.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	it := &item{value: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	if _, loaded := c.data.Swap(key, it); !loaded {
		c.size.Add(1)
	}
	if c.config.MaxItems > 0 && int(c.size.Load()) > c.config.MaxItems {
		c.evictOverflow(key)
	}
}

// evictOverflow drops expired entries first, then arbitrary entries until the
// cache is back under MaxItems. The just-written key is spared.
func (c *Cache) evictOverflow(keep string) {
	c.evictExpired()
	c.data.Range(func(key, value any) bool {
		if int(c.size.Load()) <= c.config.MaxItems {
			return false
		}
		k := key.(string)
		if k == keep {
			return true
		}
		if it, ok := value.(*item); ok {
			c.remove(k, it)
		}
		return true
	})
}

// Delete removes key from the cache.
func (c *Cache) Delete(_ context.Context, key string) {
	if value, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, value.(*item).value)
		}
	}
}

// Clear removes every entry.
func (c *Cache) Clear(_ context.Context) {
	c.data.Range(func(key, value any) bool {
		if it, ok := value.(*item); ok {
			c.remove(key.(string), it)
		}
		return true
	})
}

// Range calls f for every fresh entry until f returns false. The iteration
// observes a point-in-time view of the map per sync.Map semantics.
func (c *Cache) Range(f func(key string, value any) bool) {
	now := time.Now()
	c.data.Range(func(key, value any) bool {
		it := value.(*item)
		if it.expired(now) {
			return true
		}
		return f(key.(string), it.value)
	})
}

// Values returns a snapshot of all fresh values.
func (c *Cache) Values() []any {
	values := make([]any, 0, c.size.Load())
	c.Range(func(_ string, value any) bool {
		values = append(values, value)
		return true
	})
	return values
}

// Size returns the current number of entries, including not-yet-purged
// expired ones.
func (c *Cache) Size() int64 {
	return c.size.Load()
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}
