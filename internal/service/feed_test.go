package service

import (
	"context"
	"errors"
	"testing"

	"mingle/internal/cache"
	"mingle/internal/model"
)

func TestFeedService_GetFeed_WarmsColdCache(t *testing.T) {
	warmPosts := []cache.PostScore{
		{PostID: 10, Timestamp: 1000},
		{PostID: 11, Timestamp: 2000},
	}

	var warmedFollowees []string
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return false, nil
		},
		getFeedFn: func(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
			return []int64{11, 10}, []float64{2000, 1000}, nil
		},
	}
	postRepo := &mockPostRepository{
		getFeedPostIDsFn: func(ctx context.Context, followeeIDs []string, limit int) ([]cache.PostScore, error) {
			warmedFollowees = followeeIDs
			return warmPosts, nil
		},
		getByIDsFn: func(ctx context.Context, postIDs []int64) ([]model.Post, error) {
			posts := make([]model.Post, len(postIDs))
			for i, id := range postIDs {
				posts[i] = model.Post{ID: id, AuthorID: "uid-author"}
			}
			return posts, nil
		},
	}
	followRepo := &mockFollowRepository{
		getFolloweeIDsFn: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"uid-author"}, nil
		},
	}

	svc := NewFeedService(feedCache, postRepo, followRepo)
	resp, err := svc.GetFeed(context.Background(), "uid-reader", nil, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(feedCache.warmCacheCalls) != 1 {
		t.Fatalf("WarmCache called %d times, want 1", len(feedCache.warmCacheCalls))
	}
	// Warm set must include the reader's own posts.
	found := false
	for _, uid := range warmedFollowees {
		if uid == "uid-reader" {
			found = true
		}
	}
	if !found {
		t.Error("warm query should include the reader's own uid")
	}
	if len(resp.Posts) != 2 {
		t.Errorf("posts = %d, want 2", len(resp.Posts))
	}
}

func TestFeedService_GetFeed_WarmCacheNotRewarmed(t *testing.T) {
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
		getFeedFn: func(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
			return []int64{5}, []float64{1234}, nil
		},
	}
	postRepo := &mockPostRepository{
		getByIDsFn: func(ctx context.Context, postIDs []int64) ([]model.Post, error) {
			return []model.Post{{ID: 5}}, nil
		},
		checkLikesFn: func(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{5: true}, nil
		},
	}

	svc := NewFeedService(feedCache, postRepo, &mockFollowRepository{})
	resp, err := svc.GetFeed(context.Background(), "uid-reader", nil, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feedCache.warmCacheCalls) != 0 {
		t.Error("a warm cache should not be re-warmed")
	}
	if !resp.Posts[0].IsLiked {
		t.Error("viewer's like state should be annotated")
	}
}

func TestFeedService_GetFeed_EmptyFeed(t *testing.T) {
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
	}
	svc := NewFeedService(feedCache, &mockPostRepository{}, &mockFollowRepository{})

	resp, err := svc.GetFeed(context.Background(), "uid-reader", nil, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Posts) != 0 || resp.HasMore || resp.NextCursor != nil {
		t.Errorf("empty feed should be an empty page, got %+v", resp)
	}
}

func TestFeedService_GetFeed_FullPageSetsCursor(t *testing.T) {
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
		getFeedFn: func(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
			return []int64{9, 8}, []float64{2000, 1000}, nil
		},
	}
	postRepo := &mockPostRepository{
		getByIDsFn: func(ctx context.Context, postIDs []int64) ([]model.Post, error) {
			return []model.Post{{ID: 9}, {ID: 8}}, nil
		},
	}

	svc := NewFeedService(feedCache, postRepo, &mockFollowRepository{})
	resp, err := svc.GetFeed(context.Background(), "uid-reader", nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasMore {
		t.Error("a full page should report has_more")
	}
	if resp.NextCursor == nil || *resp.NextCursor != "8:1000" {
		t.Errorf("next_cursor = %v, want %q", resp.NextCursor, "8:1000")
	}
}

func TestFeedService_GetFeed_CursorPassedToCache(t *testing.T) {
	var gotScore *float64
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
		getFeedFn: func(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
			gotScore = cursorScore
			return nil, nil, nil
		},
	}
	svc := NewFeedService(feedCache, &mockPostRepository{}, &mockFollowRepository{})

	cursor := "8:1000"
	if _, err := svc.GetFeed(context.Background(), "uid-reader", &cursor, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotScore == nil || *gotScore != 1000 {
		t.Errorf("cursor score = %v, want 1000", gotScore)
	}
}

func TestFeedService_GetFeed_InvalidCursor(t *testing.T) {
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
	}
	svc := NewFeedService(feedCache, &mockPostRepository{}, &mockFollowRepository{})

	bad := "not-a-cursor"
	if _, err := svc.GetFeed(context.Background(), "uid-reader", &bad, 20); err == nil {
		t.Error("expected error for malformed cursor, got nil")
	}
}

func TestFeedService_GetFeed_LikeCheckFailureDegrades(t *testing.T) {
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
		getFeedFn: func(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
			return []int64{5}, []float64{1234}, nil
		},
	}
	postRepo := &mockPostRepository{
		getByIDsFn: func(ctx context.Context, postIDs []int64) ([]model.Post, error) {
			return []model.Post{{ID: 5}}, nil
		},
		checkLikesFn: func(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
			return nil, errors.New("db timeout")
		},
	}

	svc := NewFeedService(feedCache, postRepo, &mockFollowRepository{})
	resp, err := svc.GetFeed(context.Background(), "uid-reader", nil, 20)
	if err != nil {
		t.Fatalf("a failed like check should not fail the feed: %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].IsLiked {
		t.Error("feed should be served with is_liked=false when the check fails")
	}
}

func TestFeedCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		cursor  string
		wantErr bool
		score   float64
		id      int64
	}{
		{name: "valid", cursor: "42:1700000000", score: 1700000000, id: 42},
		{name: "missing separator", cursor: "421700000000", wantErr: true},
		{name: "non-numeric id", cursor: "abc:1700000000", wantErr: true},
		{name: "non-numeric score", cursor: "42:xyz", wantErr: true},
		{name: "too many parts", cursor: "42:17:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, id, err := parseFeedCursor(tt.cursor)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score != tt.score || id != tt.id {
				t.Errorf("got (%.0f, %d), want (%.0f, %d)", score, id, tt.score, tt.id)
			}
		})
	}

	if got := formatFeedCursor(1700000000, 42); got != "42:1700000000" {
		t.Errorf("formatFeedCursor = %q, want %q", got, "42:1700000000")
	}
	score, id, err := parseFeedCursor(formatFeedCursor(999, 7))
	if err != nil || score != 999 || id != 7 {
		t.Errorf("round trip failed: score=%v id=%v err=%v", score, id, err)
	}
}
