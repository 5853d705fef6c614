package cache_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/cache"
)

func TestKeyed_CommitReplacesWholesale(t *testing.T) {
	c := cache.NewKeyed[int64, []string]()

	require.True(t, c.Commit(c.Begin(1), []string{"a", "b"}))
	require.True(t, c.Commit(c.Begin(1), []string{"c"}))

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, got)
}

// TestKeyed_OutOfOrderCompletion verifies that when two loads for the same
// key complete in reverse order, the older result is discarded.
func TestKeyed_OutOfOrderCompletion(t *testing.T) {
	c := cache.NewKeyed[int64, string]()

	older := c.Begin(7)
	newer := c.Begin(7)

	assert.True(t, c.Commit(newer, "new"))
	assert.False(t, c.Commit(older, "old"))

	got, _ := c.Get(7)
	assert.Equal(t, "new", got)
}

func TestKeyed_PutSupersedesInFlightLoads(t *testing.T) {
	c := cache.NewKeyed[int64, string]()

	inFlight := c.Begin(3)
	c.Put(3, "optimistic")

	assert.False(t, c.Commit(inFlight, "server"))
	got, _ := c.Get(3)
	assert.Equal(t, "optimistic", got)

	// A load begun after the Put wins.
	assert.True(t, c.Commit(c.Begin(3), "server"))
	got, _ = c.Get(3)
	assert.Equal(t, "server", got)
}

func TestKeyed_KeysAreIndependent(t *testing.T) {
	c := cache.NewKeyed[int64, string]()

	a := c.Begin(1)
	c.Put(2, "two")

	assert.True(t, c.Commit(a, "one"), "a Put on another key must not invalidate this one")
	assert.Equal(t, []int64{1, 2}, c.Keys(func(x, y int64) bool { return x < y }))
}

func TestKeyed_Delete(t *testing.T) {
	c := cache.NewKeyed[string, int]()
	c.Put("x", 1)
	c.Delete("x")

	_, ok := c.Get("x")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestKeyed_ConcurrentCommits(t *testing.T) {
	c := cache.NewKeyed[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Commit(c.Begin(0), i)
		}(i)
	}
	wg.Wait()

	_, ok := c.Get(0)
	assert.True(t, ok)
}
