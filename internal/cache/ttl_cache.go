package cache

import (
	"sync"
	"time"
)

// Cache is a minimal TTL cache for hot-path lookups whose source data
// changes rarely (rate cards, pincode records). Never use it for wallet
// balances.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in-memory, each expiring after the cache's TTL.
type TTLCache[K comparable, V any] struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[K]entry[V]
}

// NewTTL constructs a TTLCache whose entries expire after ttl. A zero or
// negative ttl disables expiry.
func NewTTL[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
	}
}

// Get returns a cached value if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return item.value, true
}

// Set stores a value under key.
func (c *TTLCache[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete evicts a key.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// NewLookup selects the cache for read-mostly lookups: TTL-backed when
// enabled, otherwise a Disabled cache so every read hits storage.
func NewLookup[K comparable, V any](enabled bool, ttl time.Duration) Cache[K, V] {
	if !enabled {
		return Disabled[K, V]{}
	}
	return NewTTL[K, V](ttl)
}

// Disabled always misses; used where callers opt out of caching.
type Disabled[K comparable, V any] struct{}

// Get always reports a miss.
func (Disabled[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Set drops the value.
func (Disabled[K, V]) Set(key K, value V) {}

// Delete is a no-op.
func (Disabled[K, V]) Delete(key K) {}
