package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mingle/internal/model"
	"mingle/internal/queue"
)

func TestPostService_Create_Success(t *testing.T) {
	avatar := "https://cdn.example.com/a.jpg"
	author := &model.User{UID: "uid-a", DisplayName: "Alice", PhotoURL: &avatar}

	userRepo := &mockUserRepository{
		getByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return author, nil
		},
	}
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 77
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewPostService(postRepo, userRepo, &mockNotificationRepository{}, publisher, nil)

	post, err := svc.Create(context.Background(), "uid-a", model.CreatePostRequest{
		Content: "  hello world  ",
		Tags:    []string{"go"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if post.Content != "hello world" {
		t.Errorf("content = %q, want trimmed %q", post.Content, "hello world")
	}
	if post.AuthorName != "Alice" {
		t.Errorf("author snapshot name = %q, want %q", post.AuthorName, "Alice")
	}
	if post.AuthorAvatar == nil || *post.AuthorAvatar != avatar {
		t.Error("author snapshot avatar should be copied from the profile")
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.published))
	}
	event := publisher.published[0]
	if event.Type != queue.EventPostCreated || event.PostID != 77 || event.AuthorID != "uid-a" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestPostService_Create_Validation(t *testing.T) {
	imageURL := "https://cdn.example.com/p.jpg"

	tests := []struct {
		name    string
		req     model.CreatePostRequest
		wantErr error
	}{
		{
			name:    "no content and no image",
			req:     model.CreatePostRequest{Content: "   "},
			wantErr: model.ErrContentRequired,
		},
		{
			name:    "content too long",
			req:     model.CreatePostRequest{Content: strings.Repeat("a", model.MaxPostContentLength+1)},
			wantErr: model.ErrCaptionTooLong,
		},
		{
			name: "too many tags",
			req: model.CreatePostRequest{
				Content: "ok",
				Tags:    make([]string, model.MaxPostTags+1),
			},
			wantErr: model.ErrTooManyTags,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPostService(&mockPostRepository{}, &mockUserRepository{}, &mockNotificationRepository{}, &mockPublisher{}, nil)
			_, err := svc.Create(context.Background(), "uid-a", tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Image-only posts are allowed.
	userRepo := &mockUserRepository{
		getByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid, DisplayName: "Alice"}, nil
		},
	}
	svc := NewPostService(&mockPostRepository{}, userRepo, &mockNotificationRepository{}, &mockPublisher{}, nil)
	if _, err := svc.Create(context.Background(), "uid-a", model.CreatePostRequest{ImageURL: &imageURL}); err != nil {
		t.Errorf("image-only post should be allowed, got %v", err)
	}
}

func TestPostService_Create_PublishFailureDoesNotFail(t *testing.T) {
	userRepo := &mockUserRepository{
		getByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid, DisplayName: "Alice"}, nil
		},
	}
	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
			return "", errors.New("redis down")
		},
	}
	svc := NewPostService(&mockPostRepository{}, userRepo, &mockNotificationRepository{}, publisher, nil)

	if _, err := svc.Create(context.Background(), "uid-a", model.CreatePostRequest{Content: "hi"}); err != nil {
		t.Errorf("a failed publish should not fail the create: %v", err)
	}
}

func TestPostService_GetByID(t *testing.T) {
	viewer := "uid-viewer"
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			if postID == 5 {
				return &model.Post{ID: 5, AuthorID: "uid-a"}, nil
			}
			return nil, model.ErrPostNotFound
		},
		checkLikesFn: func(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{5: true}, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockPublisher{}, nil)

	post, err := svc.GetByID(context.Background(), 5, &viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !post.IsLiked {
		t.Error("viewer's like state should be annotated")
	}

	if _, err := svc.GetByID(context.Background(), 999, nil); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestPostService_GetGlobalFeed_AnnotatesLikes(t *testing.T) {
	viewer := "uid-viewer"
	cursor := "9:1700000000"
	postRepo := &mockPostRepository{
		getGlobalFeedFn: func(ctx context.Context, c *string, limit int) ([]model.Post, *string, error) {
			return []model.Post{{ID: 9}, {ID: 8}}, &cursor, nil
		},
		checkLikesFn: func(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{8: true}, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockPublisher{}, nil)

	resp, err := svc.GetGlobalFeed(context.Background(), nil, 20, &viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasMore {
		t.Error("a non-nil cursor should report has_more")
	}
	if resp.Posts[0].IsLiked || !resp.Posts[1].IsLiked {
		t.Errorf("like annotation wrong: %v %v", resp.Posts[0].IsLiked, resp.Posts[1].IsLiked)
	}
}

func TestPostService_Delete_Ownership(t *testing.T) {
	postRepo := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (string, error) {
			if postID == 5 {
				return "uid-owner", nil
			}
			return "", model.ErrPostNotFound
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockPublisher{}, nil)

	if err := svc.Delete(context.Background(), 5, "uid-other"); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotPostOwner)
	}
	if err := svc.Delete(context.Background(), 999, "uid-owner"); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestPostService_ToggleLike_PostNotFound(t *testing.T) {
	postRepo := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (string, error) {
			return "", model.ErrPostNotFound
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockPublisher{}, nil)

	if _, err := svc.ToggleLike(context.Background(), 999, "uid-a"); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}
