package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	storedAt time.Time
	data     []byte
}

// MemoryAdviceCache is the single-process backend: a mutex-guarded map
// with lazy eviction on Get and bulk eviction via Sweep. The clock is a
// field so tests can age entries without sleeping.
type MemoryAdviceCache struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryAdviceCache creates an in-memory cache whose entries expire
// ttl after being stored. A non-positive ttl falls back to DefaultTTL.
func NewMemoryAdviceCache(ttl time.Duration) *MemoryAdviceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryAdviceCache{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a value, deleting it on the way out if it has expired.
func (c *MemoryAdviceCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	now := c.now()
	if now.Sub(entry.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if e, exists := c.items[key]; exists && now.Sub(e.storedAt) >= c.ttl {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.data, true, nil
}

// Set stores a value, unconditionally overwriting any prior entry.
func (c *MemoryAdviceCache) Set(_ context.Context, key string, value []byte) error {
	// Copy to decouple from caller's buffer
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{
		storedAt: c.now(),
		data:     valueCopy,
	}
	c.mu.Unlock()

	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (c *MemoryAdviceCache) Sweep(_ context.Context) (int, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, v := range c.items {
		if now.Sub(v.storedAt) >= c.ttl {
			delete(c.items, k)
			removed++
		}
	}

	return removed, nil
}

// Len returns the number of items currently in the cache, expired or not.
func (c *MemoryAdviceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all items from cache. Useful for tests or manual resets.
func (c *MemoryAdviceCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]memoryEntry)
	c.mu.Unlock()
}
