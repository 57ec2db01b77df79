package dedup

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduplicator(t *testing.T) {
	d := NewMemoryDeduplicator()
	ctx := context.Background()

	counted, err := d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)
	assert.True(t, counted, "first view must count")

	counted, err = d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)
	assert.False(t, counted, "repeat view must not count")

	// A different post for the same client counts.
	counted, err = d.ShouldCount(ctx, "client-a", "post-2")
	require.NoError(t, err)
	assert.True(t, counted)

	// The same post for a different client counts; windows are per client.
	counted, err = d.ShouldCount(ctx, "client-b", "post-1")
	require.NoError(t, err)
	assert.True(t, counted)
}

func TestMemoryDeduplicatorEviction(t *testing.T) {
	d := NewMemoryDeduplicator()
	ctx := context.Background()

	first, err := d.ShouldCount(ctx, "client-a", "post-0")
	require.NoError(t, err)
	require.True(t, first)

	// Fill the window completely; post-0 is now the oldest entry.
	for i := 1; i < WindowSize; i++ {
		counted, err := d.ShouldCount(ctx, "client-a", fmt.Sprintf("post-%d", i))
		require.NoError(t, err)
		require.True(t, counted)
	}

	counted, err := d.ShouldCount(ctx, "client-a", "post-0")
	require.NoError(t, err)
	assert.False(t, counted, "window is full but post-0 not yet evicted")

	// One more distinct post pushes post-0 out.
	counted, err = d.ShouldCount(ctx, "client-a", "post-overflow")
	require.NoError(t, err)
	require.True(t, counted)

	counted, err = d.ShouldCount(ctx, "client-a", "post-0")
	require.NoError(t, err)
	assert.True(t, counted, "evicted post must count again")

	// post-1 survived the eviction.
	counted, err = d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)
	assert.False(t, counted)
}

func TestMemoryDeduplicatorConcurrent(t *testing.T) {
	d := NewMemoryDeduplicator()
	ctx := context.Background()

	const goroutines = 32
	results := make(chan bool, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counted, err := d.ShouldCount(ctx, "client-a", "post-1")
			assert.NoError(t, err)
			results <- counted
		}()
	}
	wg.Wait()
	close(results)

	countedTotal := 0
	for counted := range results {
		if counted {
			countedTotal++
		}
	}
	assert.Equal(t, 1, countedTotal, "exactly one concurrent view may count")
}
