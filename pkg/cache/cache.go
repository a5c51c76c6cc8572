package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a mutex-guarded map whose entries expire after ttl.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	// gen counts invalidations. A value computed before an invalidation
	// must not be stored after it.
	gen uint64
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value, or false if there is none or it is stale.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	logrus.WithField("key", key).Debug("cache hit")
	return e.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Generation is taken before computing a value for SetIf.
func (c *Cache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIf stores value only if nothing was invalidated since gen was taken.
func (c *Cache[V]) SetIf(key string, value V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		logrus.WithField("key", key).Debug("cache set skipped, invalidated meanwhile")
		return false
	}
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	return true
}

// Invalidate drops one key, or every key when none is given.
func (c *Cache[V]) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if len(keys) == 0 {
		clear(c.entries)
		logrus.Debug("cache cleared")
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}
