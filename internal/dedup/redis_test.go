package dedup

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisDedup(t *testing.T) (*RedisDeduplicator, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDeduplicator(client), mr
}

func TestRedisDeduplicator(t *testing.T) {
	d, _ := newTestRedisDedup(t)
	ctx := context.Background()

	counted, err := d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)
	assert.True(t, counted)

	counted, err = d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)
	assert.False(t, counted)

	counted, err = d.ShouldCount(ctx, "client-b", "post-1")
	require.NoError(t, err)
	assert.True(t, counted, "windows are keyed per client token")
}

func TestRedisDeduplicatorEviction(t *testing.T) {
	d, mr := newTestRedisDedup(t)
	ctx := context.Background()

	for i := 0; i < WindowSize; i++ {
		counted, err := d.ShouldCount(ctx, "client-a", fmt.Sprintf("post-%d", i))
		require.NoError(t, err)
		require.True(t, counted)
	}

	window, err := mr.List("viewed:client-a")
	require.NoError(t, err)
	assert.Len(t, window, WindowSize)

	// Overflowing the window trims the oldest entry.
	counted, err := d.ShouldCount(ctx, "client-a", "post-overflow")
	require.NoError(t, err)
	require.True(t, counted)

	window, err = mr.List("viewed:client-a")
	require.NoError(t, err)
	assert.Len(t, window, WindowSize)
	assert.Equal(t, "post-1", window[0], "oldest entry evicted first")
	assert.Equal(t, "post-overflow", window[WindowSize-1])

	counted, err = d.ShouldCount(ctx, "client-a", "post-0")
	require.NoError(t, err)
	assert.True(t, counted, "evicted post counts again")
}

func TestRedisDeduplicatorWindowExpiry(t *testing.T) {
	d, mr := newTestRedisDedup(t)
	ctx := context.Background()

	_, err := d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)

	// Keys expire with the window TTL; a client that stays away long
	// enough starts over.
	mr.FastForward(windowTTL)

	counted, err := d.ShouldCount(ctx, "client-a", "post-1")
	require.NoError(t, err)
	assert.True(t, counted)
}
