package cache_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/engine/cache"
)

var todoKey = domain.NewKey(domain.ResourceTodo, "1")

func todo(content string, rev int64) domain.Entity {
	return domain.Entity{
		Key:      todoKey,
		Fields:   domain.Fields{"content": content},
		Revision: rev,
	}
}

func TestCache_ReadMissing(t *testing.T) {
	c := cache.New()

	entry, ok := c.Read(todoKey)
	assert.False(t, ok)
	assert.Equal(t, todoKey, entry.Key)
	assert.Zero(t, entry.Generation)
	assert.Zero(t, c.Snapshot(todoKey))
}

func TestCache_OptimisticConfirm(t *testing.T) {
	c := cache.New()
	require.True(t, c.Fill(todoKey, 0, todo("a", 1)))

	gen := c.WriteOptimistic(todoKey, todo("b", 1), false)

	entry, ok := c.Read(todoKey)
	require.True(t, ok)
	assert.True(t, entry.Pending)
	assert.Equal(t, "b", entry.Value.Fields["content"])
	assert.Equal(t, gen, entry.Generation)

	require.True(t, c.Confirm(todoKey, gen, todo("b", 2)))

	entry, ok = c.Read(todoKey)
	require.True(t, ok)
	assert.False(t, entry.Pending)
	assert.Equal(t, int64(2), entry.Value.Revision)
	assert.Greater(t, entry.Generation, gen)
}

func TestCache_RollbackRestoresPrevious(t *testing.T) {
	c := cache.New()
	previous := todo("a", 1)
	require.True(t, c.Fill(todoKey, 0, previous))
	before, _ := c.Read(todoKey)

	gen := c.WriteOptimistic(todoKey, todo("b", 1), false)
	require.True(t, c.Rollback(todoKey, gen))

	after, ok := c.Read(todoKey)
	require.True(t, ok)
	assert.Equal(t, before.Value, after.Value)
	assert.False(t, after.Pending)
	assert.Greater(t, after.Generation, before.Generation)
}

func TestCache_RollbackKeepsNewerFill(t *testing.T) {
	c := cache.New()
	require.True(t, c.Fill(todoKey, 0, todo("a", 3)))
	require.True(t, c.Fill(todoKey, c.Snapshot(todoKey), todo("newer", 4)))
	c.Invalidate(todoKey)
	before, _ := c.Read(todoKey)

	gen := c.WriteOptimistic(todoKey, todo("b", 3), false)
	require.True(t, c.Rollback(todoKey, gen))

	after, ok := c.Read(todoKey)
	require.True(t, ok)
	assert.Equal(t, before.Value, after.Value)
	assert.Equal(t, int64(4), after.Value.Revision)
	assert.True(t, after.Stale)
	assert.False(t, after.Pending)
}

func TestCache_RollbackRestoresRemovedEntry(t *testing.T) {
	c := cache.New()
	require.True(t, c.Fill(todoKey, 0, todo("a", 1)))
	gen := c.WriteOptimistic(todoKey, todo("a", 1), true)
	require.True(t, c.Confirm(todoKey, gen, domain.Entity{}))

	gen = c.WriteOptimistic(todoKey, todo("a", 1), false)
	require.True(t, c.Rollback(todoKey, gen))

	_, ok := c.Read(todoKey)
	assert.False(t, ok)
}

func TestCache_RollbackCreateRemovesEntry(t *testing.T) {
	c := cache.New()

	gen := c.WriteOptimistic(todoKey, todo("new", 0), false)
	require.True(t, c.Rollback(todoKey, gen))

	entry, ok := c.Read(todoKey)
	assert.False(t, ok)
	assert.False(t, entry.Present)
	assert.Greater(t, entry.Generation, gen)
}

func TestCache_ConfirmTombstoneDestroysEntry(t *testing.T) {
	c := cache.New()
	require.True(t, c.Fill(todoKey, 0, todo("a", 1)))

	gen := c.WriteOptimistic(todoKey, todo("a", 1), true)
	entry, ok := c.Read(todoKey)
	require.True(t, ok)
	assert.True(t, entry.Tombstone)
	assert.False(t, entry.Visible())

	require.True(t, c.Confirm(todoKey, gen, domain.Entity{}))

	_, ok = c.Read(todoKey)
	assert.False(t, ok)
	assert.Greater(t, c.Snapshot(todoKey), gen)
}

func TestCache_StaleGenerationIsDiscarded(t *testing.T) {
	c := cache.New()
	first := c.WriteOptimistic(todoKey, todo("a", 0), false)
	second := c.WriteOptimistic(todoKey, todo("b", 0), false)
	require.Greater(t, second, first)

	assert.False(t, c.Confirm(todoKey, first, todo("late", 9)))
	assert.False(t, c.Rollback(todoKey, first))

	entry, ok := c.Read(todoKey)
	require.True(t, ok)
	assert.Equal(t, "b", entry.Value.Fields["content"])
	assert.Equal(t, second, entry.Generation)
}

func TestCache_FillIsGenerationChecked(t *testing.T) {
	c := cache.New()
	observed := c.Snapshot(todoKey)

	gen := c.WriteOptimistic(todoKey, todo("mine", 0), false)
	assert.False(t, c.Fill(todoKey, observed, todo("fetched", 1)), "fill must not replace a newer write")

	require.True(t, c.Confirm(todoKey, gen, todo("mine", 1)))
	assert.False(t, c.Fill(todoKey, gen, todo("fetched", 1)), "confirm advanced the generation")

	current := c.Snapshot(todoKey)
	assert.True(t, c.Fill(todoKey, current, todo("fetched", 2)))
}

func TestCache_FillSkipsPendingEntry(t *testing.T) {
	c := cache.New()
	gen := c.WriteOptimistic(todoKey, todo("mine", 0), false)

	assert.False(t, c.Fill(todoKey, gen, todo("fetched", 1)))
}

func TestCache_InvalidateKeepsValue(t *testing.T) {
	c := cache.New()
	require.True(t, c.Fill(todoKey, 0, todo("a", 1)))
	gen := c.Snapshot(todoKey)

	c.Invalidate(todoKey)

	entry, ok := c.Read(todoKey)
	require.True(t, ok)
	assert.True(t, entry.Stale)
	assert.Equal(t, "a", entry.Value.Fields["content"])
	assert.Equal(t, gen, entry.Generation)
	assert.Equal(t, []domain.Key{todoKey}, c.StaleKeys())

	require.True(t, c.Fill(todoKey, gen, todo("a", 2)))
	entry, _ = c.Read(todoKey)
	assert.False(t, entry.Stale)
	assert.Empty(t, c.StaleKeys())
}

func TestCache_InvalidateMissingIsNoop(t *testing.T) {
	c := cache.New()
	c.Invalidate(todoKey)

	_, ok := c.Read(todoKey)
	assert.False(t, ok)
	assert.Empty(t, c.StaleKeys())
}

func TestCache_ReadReturnsCopy(t *testing.T) {
	c := cache.New()
	require.True(t, c.Fill(todoKey, 0, todo("a", 1)))

	entry, _ := c.Read(todoKey)
	entry.Value.Fields["content"] = "mutated"

	again, _ := c.Read(todoKey)
	assert.Equal(t, "a", again.Value.Fields["content"])
}

func TestCache_SubscribeReceivesChangesInOrder(t *testing.T) {
	c := cache.New()
	other := domain.NewKey(domain.ResourceTodo, "2")

	var seen []uint64
	current, cancel := c.Subscribe(todoKey, func(e domain.CacheEntry) {
		seen = append(seen, e.Generation)
	})
	assert.Zero(t, current.Generation)

	gen := c.WriteOptimistic(todoKey, todo("a", 0), false)
	c.WriteOptimistic(other, todo("x", 0), false)
	c.Confirm(todoKey, gen, todo("a", 1))
	c.Invalidate(todoKey)

	assert.Equal(t, []uint64{1, 2, 2}, seen)

	cancel()
	c.Invalidate(todoKey)
	c.WriteOptimistic(todoKey, todo("b", 1), false)
	assert.Len(t, seen, 3)
}

func TestCache_SubscriberMayReadBack(t *testing.T) {
	c := cache.New()

	var values []string
	_, cancel := c.Subscribe(todoKey, func(domain.CacheEntry) {
		entry, ok := c.Read(todoKey)
		if ok {
			values = append(values, entry.Value.Fields["content"].(string))
		}
	})
	defer cancel()

	c.WriteOptimistic(todoKey, todo("a", 0), false)
	assert.Equal(t, []string{"a"}, values)
}

func TestCache_GenerationOverflowPanics(t *testing.T) {
	c := cache.New()
	c.SetGeneration(todoKey, math.MaxUint64)

	assert.Panics(t, func() {
		c.WriteOptimistic(todoKey, todo("a", 0), false)
	})

	// The cache stays usable for other keys.
	other := domain.NewKey(domain.ResourceDiary, "1")
	assert.Equal(t, uint64(1), c.WriteOptimistic(other, domain.Entity{}, false))
}

func TestCache_GenerationMonotonicUnderConcurrency(t *testing.T) {
	c := cache.New()

	var mu sync.Mutex
	var seen []uint64
	_, cancel := c.Subscribe(todoKey, func(e domain.CacheEntry) {
		mu.Lock()
		seen = append(seen, e.Generation)
		mu.Unlock()
	})
	defer cancel()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				gen := c.WriteOptimistic(todoKey, todo("x", 0), false)
				c.Confirm(todoKey, gen, todo("x", 1))
			}
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, seen[len(seen)-1], c.Snapshot(todoKey))
}
