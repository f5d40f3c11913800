package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mingle/internal/model"
)

// prefixUpperBound closes the lexicographic prefix range [term, term+sentinel).
// The sentinel is a very high code point, so every display name starting with
// the term sorts below it.
const prefixUpperBound = "\uf8ff"

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a profile at first sign-in. The uid comes from the identity
// provider and is never generated here.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (uid, email, display_name, photo_url, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING follower_count, following_count, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, u.UID, u.Email, u.DisplayName, u.PhotoURL)
	err := row.Scan(&u.FollowerCount, &u.FollowingCount, &u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrProfileExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByUID retrieves a profile by its uid.
func (r *userRepository) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	query := `
		SELECT uid, email, display_name, photo_url, cover_photo_url, bio, location, website,
		       follower_count, following_count, created_at, updated_at
		FROM users
		WHERE uid = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by uid: %w", err)
	}

	return &u, nil
}

// GetSummaries resolves a batch of uids to summaries in one query. Uids that
// no longer resolve are absent from the map.
func (r *userRepository) GetSummaries(ctx context.Context, uids []string) (map[string]model.UserSummary, error) {
	result := make(map[string]model.UserSummary, len(uids))
	if len(uids) == 0 {
		return result, nil
	}

	query := `SELECT uid, display_name, photo_url FROM users WHERE uid = ANY($1)`
	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, pq.Array(uids))
	if err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}

	for _, u := range users {
		result[u.UID] = u
	}
	return result, nil
}

// Exists checks if a profile exists.
func (r *userRepository) Exists(ctx context.Context, uid string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE uid = $1)`, uid)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Update applies a partial profile edit and stamps updated_at. Only non-nil
// fields are written.
func (r *userRepository) Update(ctx context.Context, uid string, req model.UpdateProfileRequest) (*model.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{uid}

	appendSet := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	appendSet("display_name", req.DisplayName)
	appendSet("photo_url", req.PhotoURL)
	appendSet("cover_photo_url", req.CoverPhotoURL)
	appendSet("bio", req.Bio)
	appendSet("location", req.Location)
	appendSet("website", req.Website)

	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE uid = $1
		RETURNING uid, email, display_name, photo_url, cover_photo_url, bio, location, website,
		          follower_count, following_count, created_at, updated_at
	`, strings.Join(sets, ", "))

	var u model.User
	err := r.db.GetContext(ctx, &u, query, args...)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &u, nil
}

// Search pages profiles whose display_name falls in the lexicographic range
// [prefix, prefix+sentinel), ascending by (display_name, uid). Display names
// are not unique, so the keyset tie-breaks on uid; a name-only predicate
// would skip every user sharing the boundary row's name.
//
// The cursor is the uid of the last result on the previous page, resolved to
// its display name here. A cursor whose profile vanished restarts from the
// beginning. Fetches limit+1 rows so the caller can report has_more exactly.
func (r *userRepository) Search(ctx context.Context, prefix string, cursor *string, limit int) ([]model.UserSummary, error) {
	var anchorName *string
	var cursorUID string
	if cursor != nil {
		cursorUID = *cursor
		var name string
		err := r.db.GetContext(ctx, &name, `SELECT display_name FROM users WHERE uid = $1`, cursorUID)
		switch {
		case err == sql.ErrNoRows:
			// Stale cursor: restart from the beginning.
		case err != nil:
			return nil, fmt.Errorf("resolve search cursor: %w", err)
		default:
			anchorName = &name
		}
	}

	var query string
	var args []interface{}
	if anchorName == nil {
		query = `
			SELECT uid, display_name, photo_url
			FROM users
			WHERE display_name >= $1 AND display_name < $2
			ORDER BY display_name ASC, uid ASC
			LIMIT $3
		`
		args = []interface{}{prefix, prefix + prefixUpperBound, limit + 1}
	} else {
		query = `
			SELECT uid, display_name, photo_url
			FROM users
			WHERE display_name >= $1 AND display_name < $2 AND (display_name, uid) > ($3, $4)
			ORDER BY display_name ASC, uid ASC
			LIMIT $5
		`
		args = []interface{}{prefix, prefix + prefixUpperBound, *anchorName, cursorUID, limit + 1}
	}

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return users, nil
}

func (r *userRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error {
	query := `UPDATE users SET follower_count = follower_count + $1 WHERE uid = $2`
	_, err := tx.ExecContext(ctx, query, delta, uid)
	if err != nil {
		return fmt.Errorf("increment follower count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, uid string, delta int) error {
	query := `UPDATE users SET following_count = following_count + $1 WHERE uid = $2`
	_, err := tx.ExecContext(ctx, query, delta, uid)
	if err != nil {
		return fmt.Errorf("increment following count: %w", err)
	}
	return nil
}
