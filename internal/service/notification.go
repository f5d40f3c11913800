package service

import (
	"context"

	"mingle/internal/model"
	"mingle/internal/repository"
)

// NotificationService serves the recent-activity view. Notifications are
// written by the follow, post and comment services inside their own
// transactions; this service only reads and flips the read flag.
type NotificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// GetNotifications returns the newest notifications plus the unread badge
// count. The window is fixed-size recent activity, not a paginated archive.
func (s *NotificationService) GetNotifications(ctx context.Context, userID string, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = model.NotificationWindow
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	notifications, err := s.notifRepo.GetRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.notifRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

// MarkAsRead flips the given notifications to read. Already-read ids are
// no-ops, so the call is idempotent.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID string, notificationIDs []int64) error {
	return s.notifRepo.MarkAsRead(ctx, userID, notificationIDs)
}

// MarkAllAsRead clears the unread state in one statement.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the badge count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notifRepo.GetUnreadCount(ctx, userID)
}
