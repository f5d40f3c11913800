package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post. Author name/avatar are a creation
// time snapshot, same policy as on Post.
type Comment struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	AuthorID     string    `db:"author_id" json:"author_id"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	AuthorAvatar *string   `db:"author_avatar" json:"author_avatar,omitempty"`
	Content      string    `db:"content" json:"content"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListResponse is the paginated comment list response.
type CommentListResponse struct {
	Comments   []Comment `json:"comments"`
	NextCursor *string   `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

const (
	MaxCommentLength = 2200
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content too long")
)
