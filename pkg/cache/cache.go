package cache

import (
	"strings"
	"sync"
	"time"
)

// TTLCache provides in-memory caching with per-entry expiration. The clock
// is injected so expiry behavior is testable; eviction happens lazily on
// read and explicitly via Sweep.
type TTLCache struct {
	data map[string]*entry
	ttl  time.Duration
	now  func() time.Time
	mu   sync.RWMutex
}

// entry represents a cache entry with expiration
type entry struct {
	value      interface{}
	expiration time.Time
}

// New creates a cache with the given default TTL and the real clock.
func New(ttl time.Duration) *TTLCache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache with an injected clock.
func NewWithClock(ttl time.Duration, now func() time.Time) *TTLCache {
	return &TTLCache{
		data: make(map[string]*entry),
		ttl:  ttl,
		now:  now,
	}
}

// Get retrieves a value from the cache
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiration) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value in the cache with the default TTL
func (c *TTLCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *TTLCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &entry{
		value:      value,
		expiration: c.now().Add(ttl),
	}
}

// Delete removes a value from the cache
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

// DeleteByPrefix removes all entries with keys starting with the given prefix
func (c *TTLCache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
}

// Clear removes all entries from the cache
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*entry)
}

// Size returns the number of entries in the cache, expired ones included
func (c *TTLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

// Sweep removes expired entries
func (c *TTLCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.data {
		if now.After(e.expiration) {
			delete(c.data, key)
		}
	}
}

// GetOrSet retrieves a value from the cache, or computes and stores it if
// not present
func (c *TTLCache) GetOrSet(key string, compute func() (interface{}, error)) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	c.Set(key, value)
	return value, nil
}
