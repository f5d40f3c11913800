package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"mingle/internal/cache"
	"mingle/internal/queue"
)

// FollowerProvider abstracts follower lookups so the worker doesn't depend on
// the repository layer directly.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// RecentPostsProvider abstracts post lookups for feed backfill.
type RecentPostsProvider interface {
	GetRecentPostsByUser(ctx context.Context, userID string, limit int) ([]cache.PostScore, error)
}

const (
	// backfillLimit bounds how many of a followee's posts a new follow pulls
	// into the follower's feed.
	backfillLimit = 20

	// removeLimit bounds how many of a followee's posts an unfollow scrubs
	// from the follower's feed.
	removeLimit = 100
)

// Handler processes feed events from the queue.
type Handler struct {
	feedCache        cache.FeedCache
	followerProvider FollowerProvider
	postsProvider    RecentPostsProvider
}

func NewHandler(
	feedCache cache.FeedCache,
	followerProvider FollowerProvider,
	postsProvider RecentPostsProvider,
) *Handler {
	return &Handler{
		feedCache:        feedCache,
		followerProvider: followerProvider,
		postsProvider:    postsProvider,
	}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		err = h.handlePostDeleted(ctx, event)
	case queue.EventUserFollowed:
		err = h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		err = h.handleUserUnfollowed(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handlePostCreated fans a new post out to every follower's feed, plus the
// author's own. Per-follower failures are logged and skipped so one bad cache
// write doesn't stall the whole fan-out.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostCreated: post=%d author=%s", event.PostID, event.AuthorID)

	followers, err := h.followerProvider.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.AddPost(ctx, followerID, event.PostID, event.Timestamp); err != nil {
			log.Printf("[Worker] PostCreated: failed to add to user=%s err=%v", followerID, err)
			failCount++
		}
	}

	if err := h.feedCache.AddPost(ctx, event.AuthorID, event.PostID, event.Timestamp); err != nil {
		log.Printf("[Worker] PostCreated: failed to add to author's own feed err=%v", err)
	}

	log.Printf("[Worker] PostCreated DONE: post=%d fanout=%d failed=%d",
		event.PostID, len(followers)+1, failCount)
	return nil
}

// handlePostDeleted scrubs a deleted post from every follower's feed.
func (h *Handler) handlePostDeleted(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostDeleted: post=%d author=%s", event.PostID, event.AuthorID)

	followers, err := h.followerProvider.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemovePost(ctx, followerID, event.PostID); err != nil {
			log.Printf("[Worker] PostDeleted: failed to remove from user=%s err=%v", followerID, err)
			failCount++
		}
	}

	if err := h.feedCache.RemovePost(ctx, event.AuthorID, event.PostID); err != nil {
		log.Printf("[Worker] PostDeleted: failed to remove from author's own feed err=%v", err)
	}

	log.Printf("[Worker] PostDeleted DONE: post=%d fanout=%d failed=%d",
		event.PostID, len(followers)+1, failCount)
	return nil
}

// handleUserFollowed backfills the follower's feed with the followee's recent
// posts so the new follow is visible immediately.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] UserFollowed: follower=%s followee=%s", event.FollowerID, event.FolloweeID)

	posts, err := h.postsProvider.GetRecentPostsByUser(ctx, event.FolloweeID, backfillLimit)
	if err != nil {
		return fmt.Errorf("get recent posts: %w", err)
	}

	if len(posts) == 0 {
		return nil
	}

	var failCount int
	for _, p := range posts {
		if err := h.feedCache.AddPost(ctx, event.FollowerID, p.PostID, p.Timestamp); err != nil {
			log.Printf("[Worker] UserFollowed: failed to add post=%d err=%v", p.PostID, err)
			failCount++
		}
	}

	log.Printf("[Worker] UserFollowed DONE: follower=%s backfilled=%d failed=%d",
		event.FollowerID, len(posts), failCount)
	return nil
}

// handleUserUnfollowed removes the followee's posts from the follower's feed.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] UserUnfollowed: follower=%s followee=%s", event.FollowerID, event.FolloweeID)

	posts, err := h.postsProvider.GetRecentPostsByUser(ctx, event.FolloweeID, removeLimit)
	if err != nil {
		return fmt.Errorf("get posts to remove: %w", err)
	}

	if len(posts) == 0 {
		return nil
	}

	var failCount int
	for _, p := range posts {
		if err := h.feedCache.RemovePost(ctx, event.FollowerID, p.PostID); err != nil {
			log.Printf("[Worker] UserUnfollowed: failed to remove post=%d err=%v", p.PostID, err)
			failCount++
		}
	}

	log.Printf("[Worker] UserUnfollowed DONE: follower=%s removed=%d failed=%d",
		event.FollowerID, len(posts), failCount)
	return nil
}
