package model

import (
	"errors"
	"time"
)

// User represents a profile in the system. The uid is opaque and assigned by
// the external identity provider at first sign-in; this layer never mints one.
type User struct {
	UID            string     `db:"uid" json:"uid"`
	Email          string     `db:"email" json:"email"`
	DisplayName    string     `db:"display_name" json:"display_name"`
	PhotoURL       *string    `db:"photo_url" json:"photo_url,omitempty"`
	CoverPhotoURL  *string    `db:"cover_photo_url" json:"cover_photo_url,omitempty"`
	Bio            *string    `db:"bio" json:"bio,omitempty"`
	Location       *string    `db:"location" json:"location,omitempty"`
	Website        *string    `db:"website" json:"website,omitempty"`
	FollowerCount  int        `db:"follower_count" json:"follower_count"`
	FollowingCount int        `db:"following_count" json:"following_count"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// UserSummary is the lightweight projection used in lists (followers,
// search results, likers) and as the source of denormalized author snapshots.
type UserSummary struct {
	UID         string  `db:"uid" json:"uid"`
	DisplayName string  `db:"display_name" json:"display_name"`
	PhotoURL    *string `db:"photo_url" json:"photo_url,omitempty"`
	IsFollowing bool    `json:"is_following"`
}

// FollowStats is derived at read time, never persisted separately.
type FollowStats struct {
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
	IsFollowing    bool `json:"is_following"`
}

// ProfileResponse is the profile read model.
type ProfileResponse struct {
	User  *User       `json:"user"`
	Stats FollowStats `json:"stats"`
}

// CreateProfileRequest carries the fields known at first sign-in.
type CreateProfileRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// UpdateProfileRequest carries a partial profile edit. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	DisplayName   *string `json:"display_name,omitempty"`
	PhotoURL      *string `json:"photo_url,omitempty"`
	CoverPhotoURL *string `json:"cover_photo_url,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	Location      *string `json:"location,omitempty"`
	Website       *string `json:"website,omitempty"`
}

// UserListResponse is the paginated user list response used for
// follower/following pages and search results. The cursor is the last
// returned user's uid in both cases.
type UserListResponse struct {
	Users      []UserSummary `json:"users"`
	NextCursor *string       `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

const (
	MaxDisplayNameLength = 100
	MaxBioLength         = 500
)

var (
	// ErrUserNotFound is returned when a profile cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrProfileExists is returned when creating a profile for a uid that already has one
	ErrProfileExists = errors.New("profile already exists")

	// ErrDisplayNameRequired is returned when a profile is created without a display name
	ErrDisplayNameRequired = errors.New("display name is required")
)
