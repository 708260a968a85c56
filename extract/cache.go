package extract

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pulse"
)

// Fingerprint returns the cache key for an extraction input.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// Cache maps input fingerprints to normalized module lists. Entries are
// never evicted, so a Cache lives exactly as long as the value that owns it.
// It is safe for concurrent use; concurrent writes for the same key
// overwrite one another.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]pulse.Module
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]pulse.Module)}
}

// Get returns the stored list for key. The returned slice is the stored
// value itself, not a copy.
func (c *Cache) Get(key string) ([]pulse.Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	modules, ok := c.entries[key]
	return modules, ok
}

// Put stores modules under key.
func (c *Cache) Put(key string, modules []pulse.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = modules
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
