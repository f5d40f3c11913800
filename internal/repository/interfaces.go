package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"mingle/internal/cache"
	"mingle/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUID(ctx context.Context, uid string) (*model.User, error)
	GetSummaries(ctx context.Context, uids []string) (map[string]model.UserSummary, error)
	Exists(ctx context.Context, uid string) (bool, error)
	Update(ctx context.Context, uid string, req model.UpdateProfileRequest) (*model.User, error)
	// Search runs a lexicographic prefix-range query on display_name,
	// ascending by (display_name, uid). The cursor is the uid of the last
	// result on the previous page; fetches limit+1 rows so the caller can
	// report has_more exactly.
	Search(ctx context.Context, prefix string, cursor *string, limit int) ([]model.UserSummary, error)
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error
}

type FollowRepository interface {
	// Create inserts a follow edge with set semantics. Returns false when the
	// edge already existed (re-follow is a no-op).
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error)
	// Delete removes a follow edge. Returns false when no edge existed.
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	// GetFollowers and GetFollowing page newest-edge-first. The cursor is the
	// uid of the last user on the previous page; a cursor whose edge no
	// longer exists restarts from the beginning.
	GetFollowers(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error)
	GetFollowing(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error)
	CheckFollows(ctx context.Context, followerID string, followeeIDs []string) (map[string]bool, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFolloweeIDs(ctx context.Context, userID string) ([]string, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	// GetGlobalFeed pages all posts reverse-chronologically.
	GetGlobalFeed(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error)
	// GetUserPosts is GetGlobalFeed filtered to one author.
	GetUserPosts(ctx context.Context, authorID string, cursor *string, limit int) ([]model.Post, *string, error)
	GetRecentPostsByUser(ctx context.Context, userID string, limit int) ([]cache.PostScore, error)
	GetFeedPostIDs(ctx context.Context, followeeIDs []string, limit int) ([]cache.PostScore, error)
	GetAuthorID(ctx context.Context, postID int64) (string, error)
	Exists(ctx context.Context, postID int64) (bool, error)
	// Delete removes the post, its comments and its like edges in the caller's
	// transaction. Returns the number of comments removed.
	Delete(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error)
	// Like/Unlike mutate the post_likes edge set. Like returns false when the
	// edge already existed, Unlike returns false when it did not.
	Like(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error)
	Unlike(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error)
	CheckLikes(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// Delete removes a comment owned by authorID and reports its post id.
	Delete(ctx context.Context, tx *sqlx.Tx, commentID int64, authorID string) (int64, error)
	GetByPostID(ctx context.Context, postID int64, cursor *string, limit int) ([]model.Comment, *string, error)
	Like(ctx context.Context, tx *sqlx.Tx, commentID int64, userID string) (bool, error)
	Unlike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID string) (bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, commentID int64, delta int) (int, error)
}

type NotificationRepository interface {
	// Create inserts one notification inside the caller's transaction so the
	// fan-out commits atomically with the action that triggered it.
	Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error
	// CreateDeduped behaves like Create but skips insertion when an unread
	// notification with the same (type, from_user_id, post_id) already exists.
	// Returns false when skipped.
	CreateDeduped(ctx context.Context, tx *sqlx.Tx, n *model.Notification) (bool, error)
	GetRecent(ctx context.Context, toUserID string, limit int) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, toUserID string, notificationIDs []int64) error
	MarkAllAsRead(ctx context.Context, toUserID string) error
	GetUnreadCount(ctx context.Context, toUserID string) (int, error)
}
