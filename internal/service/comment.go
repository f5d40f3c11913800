package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"mingle/internal/model"
	"mingle/internal/repository"
)

// notifExcerptLength bounds the comment text copied into a notification.
const notifExcerptLength = 100

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	notifRepo   repository.NotificationRepository
	db          *sqlx.DB
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	db *sqlx.DB,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		db:          db,
	}
}

// Create adds a comment to a post. The comment insert, the parent's
// comment_count bump and the author notification commit in one transaction.
// Comment notifications are never deduped: each comment is distinct activity,
// unlike repeated like toggles.
func (s *CommentService) Create(ctx context.Context, postID int64, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	postAuthorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByUID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment := &model.Comment{
		PostID:       postID,
		AuthorID:     actor.UID,
		AuthorName:   actor.DisplayName,
		AuthorAvatar: actor.PhotoURL,
		Content:      content,
	}
	if err := s.commentRepo.Create(ctx, tx, comment); err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, 1); err != nil {
		return nil, err
	}

	if postAuthorID != userID {
		excerpt := truncateExcerpt(content, notifExcerptLength)
		notification := &model.Notification{
			ToUserID:       postAuthorID,
			Type:           model.NotificationTypeComment,
			FromUserID:     actor.UID,
			FromUserName:   actor.DisplayName,
			FromUserAvatar: actor.PhotoURL,
			PostID:         &postID,
			CommentID:      &comment.ID,
			Content:        &excerpt,
		}
		if err := s.notifRepo.Create(ctx, tx, notification); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return comment, nil
}

// truncateExcerpt shortens s to at most max bytes, backing up to a rune
// boundary so the stored excerpt stays valid UTF-8.
func truncateExcerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Delete removes a comment the caller owns and decrements the parent's
// comment_count in the same transaction.
func (s *CommentService) Delete(ctx context.Context, commentID int64, userID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	postID, err := s.commentRepo.Delete(ctx, tx, commentID, userID)
	if err != nil {
		return err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByPostID pages a post's comments oldest-first.
func (s *CommentService) GetByPostID(ctx context.Context, postID int64, cursor *string, limit int) (*model.CommentListResponse, error) {
	limit = clampPageSize(limit)

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, nextCursor, err := s.commentRepo.GetByPostID(ctx, postID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &model.CommentListResponse{
		Comments:   comments,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// ToggleLike flips the caller's like on a comment. Same transactional shape
// as post likes, but comment likes never produce notifications.
func (s *CommentService) ToggleLike(ctx context.Context, commentID int64, userID string) (*model.ToggleLikeResponse, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	liked := true
	inserted, err := s.commentRepo.Like(ctx, tx, commentID, userID)
	if err != nil {
		return nil, err
	}

	delta := 1
	if !inserted {
		// Edge already present: this toggle is an unlike.
		liked = false
		removed, err := s.commentRepo.Unlike(ctx, tx, commentID, userID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, fmt.Errorf("like edge vanished mid-toggle")
		}
		delta = -1
	}

	count, err := s.commentRepo.IncrementLikeCount(ctx, tx, commentID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.ToggleLikeResponse{
		Liked:     liked,
		LikeCount: count,
	}, nil
}
