package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StockCache caches per-variant total-stock folds. Entries are short-lived
// and invalidated on every ledger write, so a stale read window only spans
// the TTL when an invalidation is lost.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStockCache builds the cache. ttl <= 0 selects 30 seconds.
func NewStockCache(client *redis.Client, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StockCache{client: client, ttl: ttl}
}

func stockKey(variantID int64) string {
	return fmt.Sprintf("stock:total:%d", variantID)
}

// GetTotal returns the cached fold, reporting a miss on any error.
func (c *StockCache) GetTotal(ctx context.Context, variantID int64) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, stockKey(variantID)).Result()
	if err != nil {
		return 0, false
	}
	total, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}

// SetTotal stores the fold for the TTL window.
func (c *StockCache) SetTotal(ctx context.Context, variantID, total int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, stockKey(variantID), strconv.FormatInt(total, 10), c.ttl).Err()
}

// Invalidate drops the cached fold after a ledger write.
func (c *StockCache) Invalidate(ctx context.Context, variantID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, stockKey(variantID)).Err()
}
