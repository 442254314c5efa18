package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCache starts an in-process Redis and returns a cache bound to it.
func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, "test:", time.Minute), srv
}

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_GetSet(t *testing.T) {
	c, srv := setupCache(t)
	ctx := context.Background()

	var got cachedValue
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", cachedValue{Name: "a", Count: 2}))
	assert.True(t, srv.Exists("test:k"))
	assert.Equal(t, time.Minute, srv.TTL("test:k"))

	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedValue{Name: "a", Count: 2}, got)

	stats := c.GetStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, uint64(2), stats.TotalGets)
	assert.InDelta(t, 50.0, stats.HitRate, 0.001)
}

func TestCache_Expiry(t *testing.T) {
	c, srv := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedValue{Name: "a"}))
	srv.FastForward(2 * time.Minute)

	var got cachedValue
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_UnmarshalError(t *testing.T) {
	c, srv := setupCache(t)
	require.NoError(t, srv.Set("test:k", "not json"))

	var got cachedValue
	found, err := c.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, uint64(1), c.GetStats().Errors)
}

func TestCache_Delete(t *testing.T) {
	c, srv := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))
	require.NoError(t, c.Set(ctx, "c", 3))

	require.NoError(t, c.Delete(ctx, "a", "b"))
	assert.False(t, srv.Exists("test:a"))
	assert.False(t, srv.Exists("test:b"))
	assert.True(t, srv.Exists("test:c"))
	assert.Equal(t, uint64(2), c.GetStats().Deletes)

	require.NoError(t, c.Delete(ctx))
}

func TestCache_DeletePattern(t *testing.T) {
	c, srv := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "id:1", 1))
	require.NoError(t, c.Set(ctx, "id:2", 2))
	require.NoError(t, c.Set(ctx, "list", 3))
	require.NoError(t, srv.Set("other:id:1", "untouched"))

	require.NoError(t, c.DeletePattern(ctx, "id:*"))
	assert.False(t, srv.Exists("test:id:1"))
	assert.False(t, srv.Exists("test:id:2"))
	assert.True(t, srv.Exists("test:list"))
	assert.True(t, srv.Exists("other:id:1"))
}
