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
	// FeedCachePrefix is the key prefix for per-user home feed caches.
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap bounds the number of post ids cached per user.
	FeedCacheCap = 500

	// FeedCacheTTL expires feeds of inactive users.
	FeedCacheTTL = 7 * 24 * time.Hour
)

// PostScore pairs a post id with its creation time in epoch microseconds,
// which doubles as the sorted-set score. Microsecond precision keeps posts
// created in the same second distinguishable under the exclusive cursor
// bound in GetFeed.
type PostScore struct {
	PostID    int64
	Timestamp int64
}

// FeedCache is the home feed cache: a capped, reverse-chronological set of
// post ids per user, maintained by the fan-out workers.
type FeedCache interface {
	// AddPost inserts one post into a user's feed, trimming to cap.
	AddPost(ctx context.Context, userID string, postID int64, timestamp int64) error

	// RemovePost drops one post from a user's feed.
	RemovePost(ctx context.Context, userID string, postID int64) error

	// GetFeed returns post ids newest-first. With a cursor score, returns
	// posts strictly older than it.
	GetFeed(ctx context.Context, userID string, cursorScore *float64, limit int) (postIDs []int64, scores []float64, err error)

	// GetScore returns the timestamp score of a cached post.
	// found=false means the post is not in this user's feed.
	GetScore(ctx context.Context, userID string, postID int64) (score int64, found bool, err error)

	// WarmCache bulk-loads a feed, for new users and TTL-expired feeds.
	WarmCache(ctx context.Context, userID string, posts []PostScore) error

	// Size returns the number of cached posts for a user.
	Size(ctx context.Context, userID string) (int64, error)

	// Exists reports whether the user has a feed key at all. The service warms
	// the cache when this is false.
	Exists(ctx context.Context, userID string) (bool, error)
}

// RedisFeedCache implements FeedCache on Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
}

func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID string) string {
	return FeedCachePrefix + userID
}

// AddPost pipelines ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE.
func (c *RedisFeedCache) AddPost(ctx context.Context, userID string, postID int64, timestamp int64) error {
	key := feedKey(userID)
	startTime := time.Now()

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(postID, 10),
	})
	// Rank 0 is the oldest score; keep only the newest FeedCacheCap entries.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[FeedCache] AddPost FAILED: user=%s post=%d err=%v", userID, postID, err)
		return fmt.Errorf("add post to feed: %w", err)
	}

	log.Printf("[FeedCache] AddPost OK: user=%s post=%d timestamp=%d duration=%v",
		userID, postID, timestamp, time.Since(startTime))
	return nil
}

func (c *RedisFeedCache) RemovePost(ctx context.Context, userID string, postID int64) error {
	key := feedKey(userID)
	member := strconv.FormatInt(postID, 10)

	removed, err := c.client.ZRem(ctx, key, member).Result()
	if err != nil {
		log.Printf("[FeedCache] RemovePost FAILED: user=%s post=%d err=%v", userID, postID, err)
		return fmt.Errorf("remove post from feed: %w", err)
	}

	log.Printf("[FeedCache] RemovePost OK: user=%s post=%d removed=%d", userID, postID, removed)
	return nil
}

// GetFeed reads newest-first. A cursor score pages with an exclusive upper
// bound so the post at the cursor is not repeated.
func (c *RedisFeedCache) GetFeed(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
	key := feedKey(userID)
	startTime := time.Now()

	var results []redis.Z
	var err error

	if cursorScore == nil {
		results, err = c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	} else {
		results, err = c.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    fmt.Sprintf("(%f", *cursorScore),
			Offset: 0,
			Count:  int64(limit),
		}).Result()
	}

	if err != nil {
		log.Printf("[FeedCache] GetFeed FAILED: user=%s err=%v", userID, err)
		return nil, nil, fmt.Errorf("get feed: %w", err)
	}

	// Refresh TTL on access.
	c.client.Expire(ctx, key, FeedCacheTTL)

	postIDs := make([]int64, len(results))
	scores := make([]float64, len(results))
	for i, z := range results {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse post id: %w", err)
		}
		postIDs[i] = id
		scores[i] = z.Score
	}

	log.Printf("[FeedCache] GetFeed OK: user=%s returned=%d duration=%v",
		userID, len(postIDs), time.Since(startTime))
	return postIDs, scores, nil
}

func (c *RedisFeedCache) GetScore(ctx context.Context, userID string, postID int64) (int64, bool, error) {
	key := feedKey(userID)
	member := strconv.FormatInt(postID, 10)

	score, err := c.client.ZScore(ctx, key, member).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		log.Printf("[FeedCache] GetScore FAILED: user=%s post=%d err=%v", userID, postID, err)
		return 0, false, fmt.Errorf("get score: %w", err)
	}

	return int64(score), true, nil
}

// WarmCache bulk-inserts with a single pipelined ZADD.
func (c *RedisFeedCache) WarmCache(ctx context.Context, userID string, posts []PostScore) error {
	if len(posts) == 0 {
		log.Printf("[FeedCache] WarmCache: user=%s posts=0 (nothing to warm)", userID)
		return nil
	}

	key := feedKey(userID)
	startTime := time.Now()

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: strconv.FormatInt(p.PostID, 10),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: user=%s posts=%d err=%v", userID, len(posts), err)
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: user=%s posts=%d duration=%v",
		userID, len(posts), time.Since(startTime))
	return nil
}

func (c *RedisFeedCache) Size(ctx context.Context, userID string) (int64, error) {
	size, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID string) (bool, error) {
	exists, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check cache exists: %w", err)
	}
	return exists > 0, nil
}
