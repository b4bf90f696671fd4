package cache

import "go.trai.ch/daybook/internal/core/domain"

// SetGeneration forces the generation of key for overflow tests.
func (c *Cache) SetGeneration(key domain.Key, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &domain.CacheEntry{Key: key}
		c.entries[key] = e
	}
	e.Generation = gen
}
