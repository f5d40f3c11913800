package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mingle/internal/cache"
	"mingle/internal/model"
	"mingle/internal/repository"
)

const (
	// CacheWarmLimit is the max posts fetched when warming a cold feed.
	CacheWarmLimit = 500
)

// FeedService serves the personalized home feed from the Redis cache,
// hydrating post rows from Postgres. The cache holds only (post id, score)
// pairs; everything else lives on the post row.
type FeedService struct {
	feedCache  cache.FeedCache
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewFeedService(
	feedCache cache.FeedCache,
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
}

// GetFeed pages the user's home feed. A cold cache (new user or TTL expiry)
// is warmed from the follow graph before reading. Posts deleted since they
// were cached drop out during hydration.
func (s *FeedService) GetFeed(ctx context.Context, userID string, cursor *string, limit int) (*model.PostListResponse, error) {
	startTime := time.Now()
	limit = clampPageSize(limit)

	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		log.Printf("[FeedService] Cache check failed for user=%s: %v", userID, err)
	}

	if !exists {
		log.Printf("[FeedService] Cache miss for user=%s, warming...", userID)
		if err := s.warmCache(ctx, userID); err != nil {
			log.Printf("[FeedService] Cache warm failed for user=%s: %v", userID, err)
		}
	}

	var cursorScore *float64
	if cursor != nil {
		score, _, err := parseFeedCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		cursorScore = &score
	}

	postIDs, scores, err := s.feedCache.GetFeed(ctx, userID, cursorScore, limit)
	if err != nil {
		return nil, fmt.Errorf("get feed from cache: %w", err)
	}

	if len(postIDs) == 0 {
		return &model.PostListResponse{Posts: []model.Post{}}, nil
	}

	posts, err := s.hydratePosts(ctx, userID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("hydrate posts: %w", err)
	}

	var nextCursor *string
	hasMore := len(postIDs) == limit
	if hasMore && len(scores) > 0 {
		lastID := postIDs[len(postIDs)-1]
		lastScore := scores[len(scores)-1]
		c := formatFeedCursor(lastScore, lastID)
		nextCursor = &c
	}

	log.Printf("[FeedService] GetFeed OK: user=%s posts=%d hasMore=%v duration=%v",
		userID, len(posts), hasMore, time.Since(startTime))

	return &model.PostListResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// warmCache rebuilds the feed from the follow graph, including the user's
// own posts.
func (s *FeedService) warmCache(ctx context.Context, userID string) error {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("get followee ids: %w", err)
	}

	followeeIDs = append(followeeIDs, userID)

	posts, err := s.postRepo.GetFeedPostIDs(ctx, followeeIDs, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get feed post ids: %w", err)
	}

	if len(posts) == 0 {
		return nil
	}

	if err := s.feedCache.WarmCache(ctx, userID, posts); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: user=%s posts=%d", userID, len(posts))
	return nil
}

// hydratePosts resolves cached post ids to full rows and annotates the
// viewer's like state. Author name and avatar ride on the row itself.
func (s *FeedService) hydratePosts(ctx context.Context, viewerID string, postIDs []int64) ([]model.Post, error) {
	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	likeMap, err := s.postRepo.CheckLikes(ctx, viewerID, postIDs)
	if err != nil {
		log.Printf("[FeedService] Failed to check likes: %v", err)
		return posts, nil
	}

	for i := range posts {
		posts[i].IsLiked = likeMap[posts[i].ID]
	}

	return posts, nil
}

// parseFeedCursor parses an "id:timestamp" cursor into a score and post id.
func parseFeedCursor(cursor string) (float64, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cursor format, expected id:timestamp")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid post id in cursor: %w", err)
	}

	score, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return score, id, nil
}

// formatFeedCursor builds an "id:timestamp" cursor. Scores are epoch
// microseconds; float64 represents them exactly, so %.0f loses nothing.
func formatFeedCursor(score float64, id int64) string {
	return fmt.Sprintf("%d:%.0f", id, score)
}
