package service

import (
	"context"
	"errors"
	"testing"

	"mingle/internal/model"
)

func TestNotificationService_GetNotifications(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero limit uses window", limit: 0, wantLimit: model.NotificationWindow},
		{name: "negative limit uses window", limit: -5, wantLimit: model.NotificationWindow},
		{name: "explicit limit respected", limit: 10, wantLimit: 10},
		{name: "oversized limit clamped", limit: 500, wantLimit: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			notifRepo := &mockNotificationRepository{
				getRecentFn: func(ctx context.Context, toUserID string, limit int) ([]model.Notification, error) {
					gotLimit = limit
					return []model.Notification{{ID: 1, Type: model.NotificationTypeFollow}}, nil
				},
				getUnreadCountFn: func(ctx context.Context, toUserID string) (int, error) {
					return 3, nil
				},
			}
			svc := NewNotificationService(notifRepo)

			resp, err := svc.GetNotifications(context.Background(), "uid-a", tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("repository limit = %d, want %d", gotLimit, tt.wantLimit)
			}
			if resp.UnreadCount != 3 {
				t.Errorf("unread_count = %d, want 3", resp.UnreadCount)
			}
			if len(resp.Notifications) != 1 {
				t.Errorf("notifications = %d, want 1", len(resp.Notifications))
			}
		})
	}
}

func TestNotificationService_GetNotifications_RepoError(t *testing.T) {
	dbError := errors.New("query failed")
	notifRepo := &mockNotificationRepository{
		getRecentFn: func(ctx context.Context, toUserID string, limit int) ([]model.Notification, error) {
			return nil, dbError
		},
	}
	svc := NewNotificationService(notifRepo)

	if _, err := svc.GetNotifications(context.Background(), "uid-a", 20); !errors.Is(err, dbError) {
		t.Errorf("error = %v, want %v", err, dbError)
	}
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	notifRepo := &mockNotificationRepository{}
	svc := NewNotificationService(notifRepo)

	ids := []int64{1, 2, 3}
	if err := svc.MarkAsRead(context.Background(), "uid-a", ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifRepo.markAsReadCalls) != 1 {
		t.Fatalf("MarkAsRead called %d times, want 1", len(notifRepo.markAsReadCalls))
	}
	if len(notifRepo.markAsReadCalls[0]) != 3 {
		t.Errorf("MarkAsRead got %d ids, want 3", len(notifRepo.markAsReadCalls[0]))
	}
}
