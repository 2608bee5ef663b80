package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for per-user home feed caches
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of pins cached per user
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for a feed cache entry (7 days)
	FeedCacheTTL = 7 * 24 * time.Hour
)

// PinScore pairs a pin ID with its creation timestamp, the score used to
// order the feed.
type PinScore struct {
	PinID     int64
	Timestamp int64 // Unix timestamp
}

// FeedCache defines the home feed cache operations. An interface so
// services and workers can be tested with mocks.
type FeedCache interface {
	// AddPin adds a pin to a user's feed cache.
	// Pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL)
	AddPin(ctx context.Context, userID, pinID int64, timestamp int64) error

	// RemovePin removes a pin from a user's feed cache.
	RemovePin(ctx context.Context, userID, pinID int64) error

	// GetFeed retrieves pin IDs from a user's feed cache, newest first.
	// With a cursor score, only pins strictly older than it are returned.
	GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) (pinIDs []int64, scores []float64, err error)

	// WarmCache bulk-inserts pins into a user's feed cache.
	WarmCache(ctx context.Context, userID int64, pins []PinScore) error

	// Size returns the number of pins in a user's feed cache.
	Size(ctx context.Context, userID int64) (int64, error)

	// Exists reports whether the user has a feed cache entry. False means
	// a new user or an expired TTL; the service should warm the cache.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisFeedCache implements FeedCache using Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, userID)
}

// AddPin adds a pin to a user's feed cache using a pipeline.
func (c *RedisFeedCache) AddPin(ctx context.Context, userID, pinID int64, timestamp int64) error {
	key := feedKey(userID)

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(pinID, 10),
	})

	// Keep only the FeedCacheCap newest scores; rank 0 is the oldest.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))

	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] AddPin FAILED: user=%d pin=%d err=%v", userID, pinID, err)
		return fmt.Errorf("add pin to feed: %w", err)
	}

	return nil
}

// RemovePin removes a pin from a user's feed cache.
func (c *RedisFeedCache) RemovePin(ctx context.Context, userID, pinID int64) error {
	key := feedKey(userID)
	member := strconv.FormatInt(pinID, 10)

	if _, err := c.client.ZRem(ctx, key, member).Result(); err != nil {
		log.Printf("[FeedCache] RemovePin FAILED: user=%d pin=%d err=%v", userID, pinID, err)
		return fmt.Errorf("remove pin from feed: %w", err)
	}

	return nil
}

// GetFeed retrieves pin IDs from a user's feed cache.
// Without a cursor it returns the newest pins (ZREVRANGE); with a cursor
// it returns pins with score strictly below it (ZREVRANGEBYSCORE).
func (c *RedisFeedCache) GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]int64, []float64, error) {
	key := feedKey(userID)

	var results []redis.Z
	var err error

	if cursorScore == nil {
		results, err = c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	} else {
		// "(" prefix makes the max bound exclusive
		results, err = c.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    fmt.Sprintf("(%f", *cursorScore),
			Offset: 0,
			Count:  int64(limit),
		}).Result()
	}

	if err != nil {
		log.Printf("[FeedCache] GetFeed FAILED: user=%d err=%v", userID, err)
		return nil, nil, fmt.Errorf("get feed: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, FeedCacheTTL)

	pinIDs := make([]int64, len(results))
	scores := make([]float64, len(results))

	for i, z := range results {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse pin id: %w", err)
		}
		pinIDs[i] = id
		scores[i] = z.Score
	}

	return pinIDs, scores, nil
}

// WarmCache bulk-inserts pins into a user's feed cache using a pipeline.
func (c *RedisFeedCache) WarmCache(ctx context.Context, userID int64, pins []PinScore) error {
	if len(pins) == 0 {
		return nil
	}

	key := feedKey(userID)
	startTime := time.Now()

	pipe := c.client.Pipeline()

	members := make([]redis.Z, len(pins))
	for i, p := range pins {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: strconv.FormatInt(p.PinID, 10),
		}
	}
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: user=%d pins=%d err=%v", userID, len(pins), err)
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: user=%d pins=%d duration=%v",
		userID, len(pins), time.Since(startTime))
	return nil
}

// Size returns the number of pins in a user's feed cache.
func (c *RedisFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	size, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}

// Exists checks if a user has a feed cache entry.
func (c *RedisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	exists, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check cache exists: %w", err)
	}
	return exists > 0, nil
}
