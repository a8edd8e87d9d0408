package cache

import (
	"context"
	"sync"
	"time"

	poolingapp "github.com/craftbridge/backend/internal/application/pooling"
)

// MemoryAnalyticsCache is an in-process analytics cache used when Redis
// is unavailable. Entries expire lazily on read. Not shared across
// instances, so it only suits single-node deployments and tests.
type MemoryAnalyticsCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryAnalyticsCache creates an empty in-memory analytics cache
func NewMemoryAnalyticsCache() *MemoryAnalyticsCache {
	return &MemoryAnalyticsCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for the key, reporting whether it was
// present and unexpired
func (c *MemoryAnalyticsCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores the value under the key with the given TTL. A zero TTL
// keeps the entry until the process exits.
func (c *MemoryAnalyticsCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Ensure MemoryAnalyticsCache implements AnalyticsCache
var _ poolingapp.AnalyticsCache = (*MemoryAnalyticsCache)(nil)
