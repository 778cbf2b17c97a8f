package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis key prefix for cached leaderboard pages
const leaderboardPrefix = "leaderboard:page:"

// LeaderboardCache caches rendered leaderboard pages in Redis with a short
// TTL. A nil cache is valid and bypasses caching entirely, so tests and
// deployments without Redis work unchanged.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a cache around the given client. Pass nil to
// disable caching.
func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LeaderboardCache{client: client, ttl: ttl}
}

func pageKey(offset, limit int) string {
	return fmt.Sprintf("%s%d:%d", leaderboardPrefix, offset, limit)
}

// GetPage loads a cached page into dest, reporting whether it was present.
func (c *LeaderboardCache) GetPage(ctx context.Context, offset, limit int, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}

	raw, err := c.client.Get(ctx, pageKey(offset, limit)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetPage stores a rendered page.
func (c *LeaderboardCache) SetPage(ctx context.Context, offset, limit int, page interface{}) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pageKey(offset, limit), raw, c.ttl).Err()
}

// Invalidate drops every cached page. Called after any mutation that changes
// scores or follower counts.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, leaderboardPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
