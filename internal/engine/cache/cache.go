// Package cache holds the client-side view of remote entities.
package cache

import (
	"fmt"
	"math"
	"sync"

	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/engine/event"
)

// Cache is the single owner of cache entries. Every write advances the
// key's generation, and generation-checked writes (Confirm, Rollback, Fill)
// only apply while the caller's generation is still current, so a late
// response can never overwrite a newer value.
type Cache struct {
	mu      sync.Mutex
	entries map[domain.Key]*domain.CacheEntry
	prior   map[domain.Key]domain.CacheEntry
	subs    map[domain.Key]*event.Subscribers[domain.CacheEntry]
	events  event.Queue
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[domain.Key]*domain.CacheEntry),
		prior:   make(map[domain.Key]domain.CacheEntry),
		subs:    make(map[domain.Key]*event.Subscribers[domain.CacheEntry]),
	}
}

// Read returns the entry for key. The boolean is false when the key has
// no value, in which case the returned entry still reports its generation.
func (c *Cache) Read(key domain.Key) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.CacheEntry{Key: key}, false
	}
	return snapshot(e), e.Present
}

// Snapshot returns the current generation of key. Pass it to Fill when the
// fetched value arrives.
func (c *Cache) Snapshot(key domain.Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.Generation
	}
	return 0
}

// WriteOptimistic stores a value that has not been confirmed by the remote
// store yet and returns the new generation. A tombstone marks a pending
// delete. The entry as it was before the first unconfirmed write is kept
// for Rollback.
func (c *Cache) WriteOptimistic(key domain.Key, value domain.Entity, tombstone bool) uint64 {
	var gen uint64
	c.apply(key, func(e *domain.CacheEntry) bool {
		if !e.Pending {
			c.prior[key] = snapshot(e)
		}
		advance(e)
		value.Key = key
		e.Value = value.Clone()
		e.Present = true
		e.Tombstone = tombstone
		e.Pending = true
		gen = e.Generation
		return true
	})
	return gen
}

// Confirm replaces the pending value with the remote result. It reports
// false and changes nothing when gen is no longer current. Confirming a
// tombstone removes the value.
func (c *Cache) Confirm(key domain.Key, gen uint64, final domain.Entity) bool {
	return c.apply(key, func(e *domain.CacheEntry) bool {
		if e.Generation != gen {
			return false
		}
		delete(c.prior, key)
		advance(e)
		e.Pending = false
		e.Stale = false
		if e.Tombstone {
			clearValue(e)
			return true
		}
		final.Key = key
		e.Value = final.Clone()
		return true
	})
}

// Rollback restores the entry as it was before the pending write, value
// and stale flag included. It reports false and changes nothing when gen is
// no longer current. A key that had no value loses it again, which is how a
// failed create disappears.
func (c *Cache) Rollback(key domain.Key, gen uint64) bool {
	return c.apply(key, func(e *domain.CacheEntry) bool {
		if e.Generation != gen {
			return false
		}
		prior := c.prior[key]
		delete(c.prior, key)

		advance(e)
		e.Pending = false
		if !prior.Present {
			clearValue(e)
			return true
		}
		e.Value = prior.Value.Clone()
		e.Value.Key = key
		e.Present = true
		e.Tombstone = prior.Tombstone
		e.Stale = prior.Stale || e.Stale
		return true
	})
}

// Fill stores a value read from the remote store. It reports false when
// the key was written after observed was taken or a write is pending.
func (c *Cache) Fill(key domain.Key, observed uint64, value domain.Entity) bool {
	return c.apply(key, func(e *domain.CacheEntry) bool {
		if e.Generation != observed || e.Pending {
			return false
		}
		advance(e)
		value.Key = key
		e.Value = value.Clone()
		e.Present = true
		e.Tombstone = false
		e.Stale = false
		return true
	})
}

// Invalidate marks the value of key as stale so the next load refetches
// it. The value is kept and the generation does not change.
func (c *Cache) Invalidate(key domain.Key) {
	c.apply(key, func(e *domain.CacheEntry) bool {
		if !e.Present || e.Stale {
			return false
		}
		e.Stale = true
		return true
	})
}

// StaleKeys returns the keys whose values are marked stale.
func (c *Cache) StaleKeys() []domain.Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []domain.Key
	for k, e := range c.entries {
		if e.Present && e.Stale {
			keys = append(keys, k)
		}
	}
	return keys
}

// Subscribe returns the current entry of key and calls fn with the new
// entry after every change to key, in change order. The returned function
// cancels the subscription.
func (c *Cache) Subscribe(key domain.Key, fn func(domain.CacheEntry)) (domain.CacheEntry, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs, ok := c.subs[key]
	if !ok {
		subs = &event.Subscribers[domain.CacheEntry]{}
		c.subs[key] = subs
	}
	cancel := subs.Add(fn, &c.mu)

	current := domain.CacheEntry{Key: key}
	if e, ok := c.entries[key]; ok {
		current = snapshot(e)
	}
	return current, cancel
}

// apply runs fn on the entry of key and notifies subscribers when fn
// reports a change.
func (c *Cache) apply(key domain.Key, fn func(e *domain.CacheEntry) bool) bool {
	changed := c.mutate(key, fn)
	if changed {
		c.events.Drain()
	}
	return changed
}

func (c *Cache) mutate(key domain.Key, fn func(e *domain.CacheEntry) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &domain.CacheEntry{Key: key}
	}
	if !fn(e) {
		return false
	}

	c.entries[key] = e
	if subs, ok := c.subs[key]; ok {
		c.events.Push(subs.Notify(snapshot(e)))
	}
	return true
}

// advance moves the generation of e forward. Overflow is a programming error.
func advance(e *domain.CacheEntry) {
	if e.Generation == math.MaxUint64 {
		panic(fmt.Sprintf("cache: generation overflow for %s", e.Key))
	}
	e.Generation++
}

func clearValue(e *domain.CacheEntry) {
	e.Value = domain.Entity{}
	e.Present = false
	e.Tombstone = false
	e.Stale = false
}

func snapshot(e *domain.CacheEntry) domain.CacheEntry {
	out := *e
	out.Value = e.Value.Clone()
	return out
}
