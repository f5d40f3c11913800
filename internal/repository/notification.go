package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mingle/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a notification in the caller's transaction so the fan-out
// commits atomically with the action that produced it.
func (r *notificationRepository) Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error {
	query := `
		INSERT INTO notifications (to_user_id, type, from_user_id, from_user_name, from_user_avatar,
		                           post_id, comment_id, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, read, created_at
	`
	row := tx.QueryRowxContext(ctx, query,
		n.ToUserID, n.Type, n.FromUserID, n.FromUserName, n.FromUserAvatar,
		n.PostID, n.CommentID, n.Content)
	err := row.Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CreateDeduped inserts unless an unread notification with the same type,
// actor and post already exists. Collapses repeated like toggles into one
// entry until the recipient reads it.
func (r *notificationRepository) CreateDeduped(ctx context.Context, tx *sqlx.Tx, n *model.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (to_user_id, type, from_user_id, from_user_name, from_user_avatar,
		                           post_id, comment_id, content)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM notifications
			WHERE to_user_id = $1 AND type = $2 AND from_user_id = $3 AND post_id = $6
			  AND read = FALSE
		)
	`
	result, err := tx.ExecContext(ctx, query,
		n.ToUserID, n.Type, n.FromUserID, n.FromUserName, n.FromUserAvatar,
		n.PostID, n.CommentID, n.Content)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// GetRecent returns the newest notifications for a user, read or not.
func (r *notificationRepository) GetRecent(ctx context.Context, toUserID string, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, to_user_id, type, from_user_id, from_user_name, from_user_avatar,
		       post_id, comment_id, content, read, created_at
		FROM notifications
		WHERE to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	var notifications []model.Notification
	err := r.db.SelectContext(ctx, &notifications, query, toUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}
	return notifications, nil
}

// MarkAsRead flips the given notifications to read. Scoped to the recipient
// so a user cannot touch another user's notifications.
func (r *notificationRepository) MarkAsRead(ctx context.Context, toUserID string, notificationIDs []int64) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	query := `UPDATE notifications SET read = TRUE WHERE to_user_id = $1 AND id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, toUserID, pq.Array(notificationIDs))
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// MarkAllAsRead flips every unread notification in one statement.
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, toUserID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE to_user_id = $1 AND read = FALSE`
	_, err := r.db.ExecContext(ctx, query, toUserID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, toUserID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE to_user_id = $1 AND read = FALSE`, toUserID)
	if err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}
