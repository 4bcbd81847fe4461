package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*StockCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStockCache(client, ttl), mr
}

func TestStockCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.GetTotal(ctx, 1)
	require.False(t, ok)

	cache.SetTotal(ctx, 1, 42)
	total, ok := cache.GetTotal(ctx, 1)
	require.True(t, ok)
	require.Equal(t, int64(42), total)
}

func TestStockCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.SetTotal(ctx, 1, 10)
	cache.Invalidate(ctx, 1)

	_, ok := cache.GetTotal(ctx, 1)
	require.False(t, ok)
}

func TestStockCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	cache.SetTotal(ctx, 1, 10)
	mr.FastForward(2 * time.Second)

	_, ok := cache.GetTotal(ctx, 1)
	require.False(t, ok)
}

func TestStockCacheNilClient(t *testing.T) {
	cache := NewStockCache(nil, time.Minute)
	ctx := context.Background()

	cache.SetTotal(ctx, 1, 10)
	_, ok := cache.GetTotal(ctx, 1)
	require.False(t, ok)
	cache.Invalidate(ctx, 1)
}
