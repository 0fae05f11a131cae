package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReactionCounts caches per-post reaction totals in Redis. The cache is
// best-effort: every miss or Redis failure falls back to the database, so
// a cold or absent Redis never changes observable behavior.
type ReactionCounts struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReactionCounts(rdb *redis.Client, ttl time.Duration) *ReactionCounts {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReactionCounts{rdb: rdb, ttl: ttl}
}

func key(postID string) string { return fmt.Sprintf("reactions:count:%s", postID) }

// Get returns the cached count and whether it was present.
func (c *ReactionCounts) Get(ctx context.Context, postID string) (int64, bool) {
	val, err := c.rdb.Get(ctx, key(postID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *ReactionCounts) Set(ctx context.Context, postID string, count int64) {
	_ = c.rdb.Set(ctx, key(postID), count, c.ttl).Err()
}

// Invalidate drops the cached count after a toggle; the refresher warms it
// back from the database.
func (c *ReactionCounts) Invalidate(ctx context.Context, postID string) {
	_ = c.rdb.Del(ctx, key(postID)).Err()
}
