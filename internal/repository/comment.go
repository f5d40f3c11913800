package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mingle/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment in the caller's transaction so the insert and the
// parent post's comment_count bump commit together.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, author_name, author_avatar, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, like_count, created_at
	`
	row := tx.QueryRowxContext(ctx, query, c.PostID, c.AuthorID, c.AuthorName, c.AuthorAvatar, c.Content)
	err := row.Scan(&c.ID, &c.LikeCount, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, author_id, author_name, author_avatar, content, like_count, created_at
		FROM comments
		WHERE id = $1
	`
	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// Delete removes a comment and its like edges, enforcing ownership in the
// same statement. Returns the parent post id so the caller can decrement its
// comment_count in the same transaction.
func (r *commentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID int64, authorID string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = $1`, commentID); err != nil {
		return 0, fmt.Errorf("delete comment likes: %w", err)
	}

	var postID int64
	err := tx.GetContext(ctx, &postID, `
		DELETE FROM comments WHERE id = $1 AND author_id = $2 RETURNING post_id
	`, commentID, authorID)
	if err == sql.ErrNoRows {
		// Distinguish a missing comment from someone else's comment.
		var exists bool
		if checkErr := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID); checkErr != nil {
			return 0, fmt.Errorf("check comment exists: %w", checkErr)
		}
		if exists {
			return 0, model.ErrNotCommentOwner
		}
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("delete comment: %w", err)
	}

	return postID, nil
}

// GetByPostID pages a post's comments oldest-first with a compound keyset
// cursor, fetching limit+1 for an exact has_more.
func (r *commentRepository) GetByPostID(ctx context.Context, postID int64, cursor *string, limit int) ([]model.Comment, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT id, post_id, author_id, author_name, author_avatar, content, like_count, created_at
			FROM comments
			WHERE post_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT $2
		`
		args = []interface{}{postID, limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `
			SELECT id, post_id, author_id, author_name, author_avatar, content, like_count, created_at
			FROM comments
			WHERE post_id = $1 AND (created_at, id) > ($2, $3)
			ORDER BY created_at ASC, id ASC
			LIMIT $4
		`
		args = []interface{}{postID, ts, id, limit + 1}
	}

	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("page comments: %w", err)
	}

	var nextCursor *string
	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return comments, nextCursor, nil
}

// Like inserts a comment like edge with set semantics.
func (r *commentRepository) Like(ctx context.Context, tx *sqlx.Tx, commentID int64, userID string) (bool, error) {
	query := `
		INSERT INTO comment_likes (comment_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (comment_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("insert comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *commentRepository) Unlike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID string) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("delete comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *commentRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, commentID int64, delta int) (int, error) {
	query := `UPDATE comments SET like_count = like_count + $1 WHERE id = $2 RETURNING like_count`
	var count int
	err := tx.GetContext(ctx, &count, query, delta, commentID)
	if err == sql.ErrNoRows {
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update comment like count: %w", err)
	}
	return count, nil
}
