package level

import "sync"

// Cache is the per-client optimistic view of current levels.
//
// It is written immediately on local selection for responsive UI, and
// overwritten whenever a currentLevelChanged broadcast arrives. It is
// never shared between clients and never persisted. Because broadcasts
// can arrive in any order and more than once, the cache is convergent:
// the last write for a key wins.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Message handlers run on
//     the messaging client's goroutines while the panel reads from its own.
type Cache struct {
	mu     sync.RWMutex
	levels map[string]string
}

// NewCache creates an empty optimistic cache.
func NewCache() *Cache {
	return &Cache{levels: make(map[string]string)}
}

// Current returns the cached stop UUID for a network and whether one is known.
func (c *Cache) Current(networkID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stopUUID, ok := c.levels[networkID]
	return stopUUID, ok
}

// Set records the cached stop for a network.
func (c *Cache) Set(networkID, stopUUID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[networkID] = stopUUID
}

// Forget drops the cached value for a network, returning it to Unknown.
func (c *Cache) Forget(networkID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.levels, networkID)
}

// Len returns the number of cached networks.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.levels)
}
