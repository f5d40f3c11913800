package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
)

// Notification is a single notification record. FromUserName and
// FromUserAvatar are denormalized snapshots of the actor at trigger time.
// Records are immutable except for the Read flag.
type Notification struct {
	ID             int64     `db:"id" json:"id"`
	ToUserID       string    `db:"to_user_id" json:"-"`
	Type           string    `db:"type" json:"type"`
	FromUserID     string    `db:"from_user_id" json:"from_user_id"`
	FromUserName   string    `db:"from_user_name" json:"from_user_name"`
	FromUserAvatar *string   `db:"from_user_avatar" json:"from_user_avatar,omitempty"`
	PostID         *int64    `db:"post_id" json:"post_id,omitempty"`
	CommentID      *int64    `db:"comment_id" json:"comment_id,omitempty"`
	Content        *string   `db:"content" json:"content,omitempty"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// NotificationListResponse is the recent-activity window plus the badge count.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// MarkReadRequest is the request body for marking notifications as read.
type MarkReadRequest struct {
	NotificationIDs []int64 `json:"notification_ids"`
}

const (
	// NotificationWindow is the default size of the recent-activity view.
	NotificationWindow = 20
)
