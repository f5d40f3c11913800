package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"mingle/internal/model"
	"mingle/internal/queue"
	"mingle/internal/repository"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	publisher queue.Publisher
	db        *sqlx.DB
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	publisher queue.Publisher,
	db *sqlx.DB,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		publisher: publisher,
		db:        db,
	}
}

// Create validates and stores a new post, snapshotting the author's name and
// avatar onto the row, then publishes a fan-out event.
func (s *PostService) Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" && req.ImageURL == nil {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxPostContentLength {
		return nil, model.ErrCaptionTooLong
	}
	if len(req.Tags) > model.MaxPostTags {
		return nil, model.ErrTooManyTags
	}

	author, err := s.userRepo.GetByUID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:     author.UID,
		AuthorName:   author.DisplayName,
		AuthorAvatar: author.PhotoURL,
		Content:      content,
		ImageURL:     req.ImageURL,
		Tags:         req.Tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Publish for async fan-out (after the row exists, best-effort). The event
	// carries the row's created_at so the fanned-out score matches what a cache
	// warm would compute for the same post.
	if s.publisher != nil {
		event := queue.NewPostCreatedEvent(post.ID, userID)
		event.Timestamp = post.CreatedAt.UnixMicro()
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] Failed to publish PostCreated event: post=%d err=%v", post.ID, err)
		}
	}

	return post, nil
}

// GetByID retrieves a single post, annotated with the viewer's like state.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		likeMap, err := s.postRepo.CheckLikes(ctx, *viewerID, []int64{postID})
		if err != nil {
			log.Printf("[PostService] Failed to check like status: %v", err)
		} else {
			post.IsLiked = likeMap[postID]
		}
	}

	return post, nil
}

// GetGlobalFeed pages all posts reverse-chronologically.
func (s *PostService) GetGlobalFeed(ctx context.Context, cursor *string, limit int, viewerID *string) (*model.PostListResponse, error) {
	limit = clampPageSize(limit)

	posts, nextCursor, err := s.postRepo.GetGlobalFeed(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	posts = s.enrichWithLikeStatus(ctx, viewerID, posts)

	return &model.PostListResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// GetUserPosts pages one author's posts for their profile.
func (s *PostService) GetUserPosts(ctx context.Context, authorID string, cursor *string, limit int, viewerID *string) (*model.PostListResponse, error) {
	limit = clampPageSize(limit)

	posts, nextCursor, err := s.postRepo.GetUserPosts(ctx, authorID, cursor, limit)
	if err != nil {
		return nil, err
	}

	posts = s.enrichWithLikeStatus(ctx, viewerID, posts)

	return &model.PostListResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// Delete removes a post the caller owns, cascading to its comments and like
// edges in one transaction. Feed caches are purged asynchronously.
func (s *PostService) Delete(ctx context.Context, postID int64, userID string) error {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return model.ErrNotPostOwner
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.postRepo.Delete(ctx, tx, postID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewPostDeletedEvent(postID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] Failed to publish PostDeleted event: post=%d err=%v", postID, err)
		}
	}

	return nil
}

// ToggleLike flips the caller's like on a post. The edge mutation and the
// counter update commit together, so the count always equals the edge
// cardinality no matter how requests interleave. A like on someone else's
// post also writes the notification in the same transaction, deduped against
// unread like notifications from the same actor on the same post.
func (s *PostService) ToggleLike(ctx context.Context, postID int64, userID string) (*model.ToggleLikeResponse, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var actor *model.User
	if authorID != userID {
		actor, err = s.userRepo.GetByUID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	liked := true
	inserted, err := s.postRepo.Like(ctx, tx, postID, userID)
	if err != nil {
		return nil, err
	}

	delta := 1
	if !inserted {
		// Edge already present: this toggle is an unlike.
		liked = false
		removed, err := s.postRepo.Unlike(ctx, tx, postID, userID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, fmt.Errorf("like edge vanished mid-toggle")
		}
		delta = -1
	}

	count, err := s.postRepo.IncrementLikeCount(ctx, tx, postID, delta)
	if err != nil {
		return nil, err
	}

	if liked && actor != nil {
		notification := &model.Notification{
			ToUserID:       authorID,
			Type:           model.NotificationTypeLike,
			FromUserID:     actor.UID,
			FromUserName:   actor.DisplayName,
			FromUserAvatar: actor.PhotoURL,
			PostID:         &postID,
		}
		if _, err := s.notifRepo.CreateDeduped(ctx, tx, notification); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.ToggleLikeResponse{
		Liked:     liked,
		LikeCount: count,
	}, nil
}

// enrichWithLikeStatus batch-checks which listed posts the viewer has liked.
// A failed check degrades to is_liked=false instead of failing the page.
func (s *PostService) enrichWithLikeStatus(ctx context.Context, viewerID *string, posts []model.Post) []model.Post {
	if viewerID == nil || len(posts) == 0 {
		return posts
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	likeMap, err := s.postRepo.CheckLikes(ctx, *viewerID, postIDs)
	if err != nil {
		log.Printf("[PostService] Failed to check like status: %v", err)
		return posts
	}

	for i := range posts {
		posts[i].IsLiked = likeMap[posts[i].ID]
	}

	return posts
}
