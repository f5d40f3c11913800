package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mingle/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts a follow edge with set semantics: re-following is a no-op
// and reports inserted=false so the caller can skip counter bumps.
func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Delete removes a follow edge. Removing an absent edge is a no-op and
// reports removed=false.
func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers pages the users following userID, newest edge first.
//
// The public cursor is the uid of the last user on the previous page (an
// opaque last-item marker). The edge timestamp for that uid anchors a keyset
// scan on (created_at, follower_id), so a page costs O(page size) regardless
// of how many followers exist. A stale cursor - the edge was removed since
// the previous page - restarts from the beginning, matching the contract for
// cursor elements that vanish mid-pagination.
//
// Fetches limit+1 rows; the presence of the extra row makes has_more exact.
// Deleted profiles never appear because the page is resolved via JOIN.
func (r *followRepository) GetFollowers(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error) {
	return r.pageEdges(ctx, userID, cursor, limit, true)
}

// GetFollowing pages the users that userID follows. See GetFollowers for the
// cursor contract.
func (r *followRepository) GetFollowing(ctx context.Context, userID string, cursor *string, limit int) ([]model.UserSummary, *string, error) {
	return r.pageEdges(ctx, userID, cursor, limit, false)
}

func (r *followRepository) pageEdges(ctx context.Context, userID string, cursor *string, limit int, followers bool) ([]model.UserSummary, *string, error) {
	// anchorCol is the fixed side of the edge, pageCol the side being listed.
	anchorCol, pageCol := "followee_id", "follower_id"
	if !followers {
		anchorCol, pageCol = "follower_id", "followee_id"
	}

	var anchor *time.Time
	var cursorUID string
	if cursor != nil {
		cursorUID = *cursor
		var ts time.Time
		err := r.db.GetContext(ctx, &ts, fmt.Sprintf(
			`SELECT created_at FROM follows WHERE %s = $1 AND %s = $2`, anchorCol, pageCol,
		), userID, cursorUID)
		switch {
		case err == sql.ErrNoRows:
			// Stale cursor: restart from the beginning.
		case err != nil:
			return nil, nil, fmt.Errorf("resolve cursor: %w", err)
		default:
			anchor = &ts
		}
	}

	var query string
	var args []interface{}
	if anchor == nil {
		query = fmt.Sprintf(`
			SELECT u.uid, u.display_name, u.photo_url
			FROM follows f
			JOIN users u ON u.uid = f.%s
			WHERE f.%s = $1
			ORDER BY f.created_at DESC, f.%s DESC
			LIMIT $2
		`, pageCol, anchorCol, pageCol)
		args = []interface{}{userID, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT u.uid, u.display_name, u.photo_url
			FROM follows f
			JOIN users u ON u.uid = f.%s
			WHERE f.%s = $1 AND (f.created_at, f.%s) < ($2, $3)
			ORDER BY f.created_at DESC, f.%s DESC
			LIMIT $4
		`, pageCol, anchorCol, pageCol, pageCol)
		args = []interface{}{userID, anchor, cursorUID, limit + 1}
	}

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("page follow edges: %w", err)
	}

	var nextCursor *string
	if len(users) > limit {
		users = users[:limit]
		last := users[len(users)-1].UID
		nextCursor = &last
	}

	return users, nextCursor, nil
}

// CheckFollows batch-checks which of followeeIDs the follower follows.
func (r *followRepository) CheckFollows(ctx context.Context, followerID string, followeeIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(followeeIDs))
	if len(followeeIDs) == 0 {
		return result, nil
	}

	query := `SELECT followee_id FROM follows WHERE follower_id = $1 AND followee_id = ANY($2)`
	var followed []string
	err := r.db.SelectContext(ctx, &followed, query, followerID, pq.Array(followeeIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check follows: %w", err)
	}

	for _, id := range followeeIDs {
		result[id] = false
	}
	for _, id := range followed {
		result[id] = true
	}

	return result, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT follower_id FROM follows WHERE followee_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) GetFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get followee ids: %w", err)
	}
	return ids, nil
}
