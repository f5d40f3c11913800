package service

// Shared function-field mocks for service tests. Each mock implements the
// repository interface and lets a test override just the calls it cares
// about; unset functions fall back to harmless defaults.

import (
	"context"

	"github.com/jmoiron/sqlx"

	"mingle/internal/cache"
	"mingle/internal/model"
	"mingle/internal/queue"
)

type mockUserRepository struct {
	createFn                  func(ctx context.Context, user *model.User) error
	getByUIDFn                func(ctx context.Context, uid string) (*model.User, error)
	getSummariesFn            func(ctx context.Context, uids []string) (map[string]model.UserSummary, error)
	existsFn                  func(ctx context.Context, uid string) (bool, error)
	updateFn                  func(ctx context.Context, uid string, req model.UpdateProfileRequest) (*model.User, error)
	searchFn                  func(ctx context.Context, prefix string, cursor *string, limit int) ([]model.UserSummary, error)
	incrementFollowerCountFn  func(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error
	incrementFollowingCountFn func(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	if m.getByUIDFn != nil {
		return m.getByUIDFn(ctx, uid)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, uids []string) (map[string]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, uids)
	}
	return map[string]model.UserSummary{}, nil
}

func (m *mockUserRepository) Exists(ctx context.Context, uid string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, uid)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, uid string, req model.UpdateProfileRequest) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, uid, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Search(ctx context.Context, prefix string, cursor *string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, prefix, cursor, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error {
	if m.incrementFollowerCountFn != nil {
		return m.incrementFollowerCountFn(ctx, tx, uid, delta)
	}
	return nil
}

func (m *mockUserRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error {
	if m.incrementFollowingCountFn != nil {
		return m.incrementFollowingCountFn(ctx, tx, uid, delta)
	}
	return nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error)
	deleteFn         func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error)
	existsFn         func(ctx context.Context, followerID, followeeID string) (bool, error)
	getFollowersFn   func(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error)
	getFollowingFn   func(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error)
	checkFollowsFn   func(ctx context.Context, followerID string, followeeIDs []string) (map[string]bool, error)
	getFollowerIDsFn func(ctx context.Context, userID string) ([]string, error)
	getFolloweeIDsFn func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID string, followeeIDs []string) (map[string]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[string]bool{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

type mockPostRepository struct {
	createFn                func(ctx context.Context, post *model.Post) error
	getByIDFn               func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn              func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	getGlobalFeedFn         func(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error)
	getUserPostsFn          func(ctx context.Context, authorID string, cursor *string, limit int) ([]model.Post, *string, error)
	getRecentPostsByUserFn  func(ctx context.Context, userID string, limit int) ([]cache.PostScore, error)
	getFeedPostIDsFn        func(ctx context.Context, followeeIDs []string, limit int) ([]cache.PostScore, error)
	getAuthorIDFn           func(ctx context.Context, postID int64) (string, error)
	existsFn                func(ctx context.Context, postID int64) (bool, error)
	deleteFn                func(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error)
	likeFn                  func(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error)
	unlikeFn                func(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error)
	checkLikesFn            func(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error)
	incrementLikeCountFn    func(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error)
	incrementCommentCountFn func(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	return nil, nil
}

func (m *mockPostRepository) GetGlobalFeed(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error) {
	if m.getGlobalFeedFn != nil {
		return m.getGlobalFeedFn(ctx, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) GetUserPosts(ctx context.Context, authorID string, cursor *string, limit int) ([]model.Post, *string, error) {
	if m.getUserPostsFn != nil {
		return m.getUserPostsFn(ctx, authorID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) GetRecentPostsByUser(ctx context.Context, userID string, limit int) ([]cache.PostScore, error) {
	if m.getRecentPostsByUserFn != nil {
		return m.getRecentPostsByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetFeedPostIDs(ctx context.Context, followeeIDs []string, limit int) ([]cache.PostScore, error) {
	if m.getFeedPostIDsFn != nil {
		return m.getFeedPostIDsFn(ctx, followeeIDs, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID int64) (string, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return "", model.ErrPostNotFound
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return false, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) Like(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, tx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, tx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPostRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	if m.incrementLikeCountFn != nil {
		return m.incrementLikeCountFn(ctx, tx, postID, delta)
	}
	return 0, nil
}

func (m *mockPostRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	if m.incrementCommentCountFn != nil {
		return m.incrementCommentCountFn(ctx, tx, postID, delta)
	}
	return nil
}

type mockNotificationRepository struct {
	createFn         func(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error
	createDedupedFn  func(ctx context.Context, tx *sqlx.Tx, n *model.Notification) (bool, error)
	getRecentFn      func(ctx context.Context, toUserID string, limit int) ([]model.Notification, error)
	markAsReadFn     func(ctx context.Context, toUserID string, notificationIDs []int64) error
	markAllAsReadFn  func(ctx context.Context, toUserID string) error
	getUnreadCountFn func(ctx context.Context, toUserID string) (int, error)

	markAsReadCalls [][]int64
}

func (m *mockNotificationRepository) Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, n)
	}
	return nil
}

func (m *mockNotificationRepository) CreateDeduped(ctx context.Context, tx *sqlx.Tx, n *model.Notification) (bool, error) {
	if m.createDedupedFn != nil {
		return m.createDedupedFn(ctx, tx, n)
	}
	return true, nil
}

func (m *mockNotificationRepository) GetRecent(ctx context.Context, toUserID string, limit int) ([]model.Notification, error) {
	if m.getRecentFn != nil {
		return m.getRecentFn(ctx, toUserID, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, toUserID string, notificationIDs []int64) error {
	m.markAsReadCalls = append(m.markAsReadCalls, notificationIDs)
	if m.markAsReadFn != nil {
		return m.markAsReadFn(ctx, toUserID, notificationIDs)
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllAsRead(ctx context.Context, toUserID string) error {
	if m.markAllAsReadFn != nil {
		return m.markAllAsReadFn(ctx, toUserID)
	}
	return nil
}

func (m *mockNotificationRepository) GetUnreadCount(ctx context.Context, toUserID string) (int, error) {
	if m.getUnreadCountFn != nil {
		return m.getUnreadCountFn(ctx, toUserID)
	}
	return 0, nil
}

type mockFeedCache struct {
	addPostFn    func(ctx context.Context, userID string, postID int64, timestamp int64) error
	removePostFn func(ctx context.Context, userID string, postID int64) error
	getFeedFn    func(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error)
	getScoreFn   func(ctx context.Context, userID string, postID int64) (int64, bool, error)
	warmCacheFn  func(ctx context.Context, userID string, posts []cache.PostScore) error
	sizeFn       func(ctx context.Context, userID string) (int64, error)
	existsFn     func(ctx context.Context, userID string) (bool, error)

	warmCacheCalls [][]cache.PostScore
}

func (m *mockFeedCache) AddPost(ctx context.Context, userID string, postID int64, timestamp int64) error {
	if m.addPostFn != nil {
		return m.addPostFn(ctx, userID, postID, timestamp)
	}
	return nil
}

func (m *mockFeedCache) RemovePost(ctx context.Context, userID string, postID int64) error {
	if m.removePostFn != nil {
		return m.removePostFn(ctx, userID, postID)
	}
	return nil
}

func (m *mockFeedCache) GetFeed(ctx context.Context, userID string, cursorScore *float64, limit int) ([]int64, []float64, error) {
	if m.getFeedFn != nil {
		return m.getFeedFn(ctx, userID, cursorScore, limit)
	}
	return nil, nil, nil
}

func (m *mockFeedCache) GetScore(ctx context.Context, userID string, postID int64) (int64, bool, error) {
	if m.getScoreFn != nil {
		return m.getScoreFn(ctx, userID, postID)
	}
	return 0, false, nil
}

func (m *mockFeedCache) WarmCache(ctx context.Context, userID string, posts []cache.PostScore) error {
	m.warmCacheCalls = append(m.warmCacheCalls, posts)
	if m.warmCacheFn != nil {
		return m.warmCacheFn(ctx, userID, posts)
	}
	return nil
}

func (m *mockFeedCache) Size(ctx context.Context, userID string) (int64, error) {
	if m.sizeFn != nil {
		return m.sizeFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFeedCache) Exists(ctx context.Context, userID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID)
	}
	return false, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.FeedEvent) (string, error)

	published []queue.FeedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}
