package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"mingle/internal/model"
	"mingle/internal/queue"
	"mingle/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifRepo  repository.NotificationRepository
	db         *sqlx.DB
	publisher  queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		db:         db,
		publisher:  publisher,
	}
}

// Follow creates a follow edge, bumps both counters and writes the follow
// notification in one transaction. Re-following is a no-op: the edge insert
// reports it and the counters and notification are skipped, so repeated
// requests can never drift the counts.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	exists, err := s.userRepo.Exists(ctx, followeeID)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrUserNotFound
	}

	follower, err := s.userRepo.GetByUID(ctx, followerID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.followRepo.Create(ctx, tx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		// Already following.
		return nil
	}

	if err := s.userRepo.IncrementFollowerCount(ctx, tx, followeeID, 1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowingCount(ctx, tx, followerID, 1); err != nil {
		return err
	}

	notification := &model.Notification{
		ToUserID:       followeeID,
		Type:           model.NotificationTypeFollow,
		FromUserID:     follower.UID,
		FromUserName:   follower.DisplayName,
		FromUserAvatar: follower.PhotoURL,
	}
	if err := s.notifRepo.Create(ctx, tx, notification); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Publish for async feed backfill (after commit, best-effort).
	if s.publisher != nil {
		event := queue.NewUserFollowedEvent(followerID, followeeID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FollowService] Failed to publish UserFollowed event: follower=%s followee=%s err=%v",
				followerID, followeeID, err)
		}
	}

	return nil
}

// Unfollow removes the follow edge and decrements both counters in one
// transaction. Unfollowing someone not followed is a no-op, counters are
// never decremented past their true value.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	removed, err := s.followRepo.Delete(ctx, tx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	if err := s.userRepo.IncrementFollowerCount(ctx, tx, followeeID, -1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowingCount(ctx, tx, followerID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewUserUnfollowedEvent(followerID, followeeID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FollowService] Failed to publish UserUnfollowed event: follower=%s followee=%s err=%v",
				followerID, followeeID, err)
		}
	}

	return nil
}

// GetFollowers pages the users following userID. When a viewer is known,
// each row is annotated with whether the viewer follows that user, via one
// batch query rather than per-row lookups.
func (s *FollowService) GetFollowers(ctx context.Context, userID string, cursor *string, limit int, viewerID *string) (*model.UserListResponse, error) {
	limit = clampPageSize(limit)

	users, nextCursor, err := s.followRepo.GetFollowers(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.UserListResponse{
		Users:      users,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// GetFollowing pages the users that userID follows. See GetFollowers.
func (s *FollowService) GetFollowing(ctx context.Context, userID string, cursor *string, limit int, viewerID *string) (*model.UserListResponse, error) {
	limit = clampPageSize(limit)

	users, nextCursor, err := s.followRepo.GetFollowing(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.UserListResponse{
		Users:      users,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// enrichWithFollowStatus batch-checks which listed users the viewer follows.
// A failed check degrades to is_following=false instead of failing the page.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID string, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	uids := make([]string, len(users))
	for i, user := range users {
		uids[i] = user.UID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, uids)
	if err != nil {
		log.Printf("[FollowService] Failed to check follow status: %v", err)
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].UID]
	}

	return users
}
