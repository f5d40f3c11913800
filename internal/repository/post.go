package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mingle/internal/cache"
	"mingle/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, author_id, author_name, author_avatar, content, image_url, tags,
	       like_count, comment_count, created_at`

// Create inserts a post. The author name/avatar snapshot is supplied by the
// service from the profile at creation time.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (author_id, author_name, author_avatar, content, image_url, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, like_count, comment_count, created_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		post.AuthorID, post.AuthorName, post.AuthorAvatar, post.Content, post.ImageURL, post.Tags)

	err := row.Scan(&post.ID, &post.LikeCount, &post.CommentCount, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE id = $1`, postColumns)

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// GetByIDs retrieves multiple posts, preserving the input order. Used for
// hydrating the home feed from cache; ids that no longer resolve are dropped.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE id = ANY($1)`, postColumns)
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	byID := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// GetGlobalFeed pages all posts reverse-chronologically with a compound
// keyset cursor. Fetches limit+1 for an exact has_more.
func (r *postRepository) GetGlobalFeed(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error) {
	return r.pagePosts(ctx, "", cursor, limit)
}

// GetUserPosts pages one author's posts, same ordering as the global feed.
func (r *postRepository) GetUserPosts(ctx context.Context, authorID string, cursor *string, limit int) ([]model.Post, *string, error) {
	return r.pagePosts(ctx, authorID, cursor, limit)
}

func (r *postRepository) pagePosts(ctx context.Context, authorID string, cursor *string, limit int) ([]model.Post, *string, error) {
	var conds []string
	var args []interface{}

	if authorID != "" {
		args = append(args, authorID)
		conds = append(conds, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if cursor != nil {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		args = append(args, ts, id)
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT %s FROM posts
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, postColumns, where, len(args))

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("page posts: %w", err)
	}

	var nextCursor *string
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return posts, nextCursor, nil
}

// GetRecentPostsByUser returns recent posts by a user for follow backfill.
// Scores are epoch microseconds so same-second posts stay distinguishable at
// feed page boundaries.
func (r *postRepository) GetRecentPostsByUser(ctx context.Context, userID string, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, (EXTRACT(EPOCH FROM created_at) * 1000000)::bigint as timestamp
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.selectPostScores(ctx, query, userID, limit)
}

// GetFeedPostIDs returns post ids from all followees for cache warming.
func (r *postRepository) GetFeedPostIDs(ctx context.Context, followeeIDs []string, limit int) ([]cache.PostScore, error) {
	if len(followeeIDs) == 0 {
		return []cache.PostScore{}, nil
	}

	query := `
		SELECT id, (EXTRACT(EPOCH FROM created_at) * 1000000)::bigint as timestamp
		FROM posts
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.selectPostScores(ctx, query, pq.Array(followeeIDs), limit)
}

func (r *postRepository) selectPostScores(ctx context.Context, query string, args ...interface{}) ([]cache.PostScore, error) {
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get post scores: %w", err)
	}

	posts := make([]cache.PostScore, len(rows))
	for i, rw := range rows {
		posts[i] = cache.PostScore{PostID: rw.ID, Timestamp: rw.Timestamp}
	}
	return posts, nil
}

// GetAuthorID returns the author of a post.
func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (string, error) {
	var authorID string
	err := r.db.GetContext(ctx, &authorID, `SELECT author_id FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return "", model.ErrPostNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// Delete removes the post with everything under it: comment like edges,
// comments, post like edges, then the post row. All statements run in the
// caller's transaction, so a concurrent snapshot reader sees either the full
// pre-delete or the full post-delete state.
func (r *postRepository) Delete(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = $1)
	`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete comment likes: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("delete post likes: %w", err)
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, model.ErrPostNotFound
	}

	return int(deleted), nil
}

// Like inserts a like edge with set semantics. Returns false if the user had
// already liked the post.
func (r *postRepository) Like(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Unlike deletes a like edge. Returns false if no edge existed.
func (r *postRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID int64, userID string) (bool, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CheckLikes batch-checks which posts the user has liked.
func (r *postRepository) CheckLikes(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

// IncrementLikeCount updates like_count in the same transaction as the edge
// mutation and returns the new value.
func (r *postRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	query := `UPDATE posts SET like_count = like_count + $1 WHERE id = $2 RETURNING like_count`
	var count int
	err := tx.GetContext(ctx, &count, query, delta, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}
	return count, nil
}

// IncrementCommentCount updates comment_count in the same transaction as the
// comment insert or delete.
func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	query := `UPDATE posts SET comment_count = comment_count + $1 WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, delta, postID)
	if err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// parseCursor parses a compound keyset cursor "id:timestamp". The timestamp
// is epoch microseconds, matching the precision of created_at; anything
// coarser would regress the keyset predicate and skip or repeat rows created
// in the same second as the page boundary.
func parseCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	var id int64
	var ts int64
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil {
		return time.Time{}, 0, err
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &ts); err != nil {
		return time.Time{}, 0, err
	}
	return time.UnixMicro(ts), id, nil
}

// formatCursor builds a compound keyset cursor "id:timestamp" with the
// timestamp in epoch microseconds.
func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.UnixMicro())
}
