package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Post represents a published post. AuthorName and AuthorAvatar are a
// snapshot taken at creation time and are not kept in sync with later
// profile edits.
type Post struct {
	ID           int64          `db:"id" json:"id"`
	AuthorID     string         `db:"author_id" json:"author_id"`
	AuthorName   string         `db:"author_name" json:"author_name"`
	AuthorAvatar *string        `db:"author_avatar" json:"author_avatar,omitempty"`
	Content      string         `db:"content" json:"content"`
	ImageURL     *string        `db:"image_url" json:"image_url,omitempty"`
	Tags         pq.StringArray `db:"tags" json:"tags,omitempty"`
	LikeCount    int            `db:"like_count" json:"like_count"`
	CommentCount int            `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`

	// Joined/derived field, not a column
	IsLiked bool `json:"is_liked"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content  string   `json:"content"`
	ImageURL *string  `json:"image_url,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// PostListResponse is the paginated post list response (global feed and
// per-author pages share it).
type PostListResponse struct {
	Posts      []Post  `json:"posts"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// ToggleLikeResponse reports the membership state after a like toggle.
type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

const (
	MaxPostContentLength = 2200
	MaxPostTags          = 10
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrCaptionTooLong = errors.New("post content too long")
	ErrTooManyTags    = errors.New("too many tags")
)
