package service

import (
	"context"

	"pinboard/internal/model"
	"pinboard/internal/repository"
)

// NotificationService reads and marks notifications. Creation happens in
// the stream workers, not here.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the user's recent notifications plus the unread count.
func (s *NotificationService) List(ctx context.Context, userID int64, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = 30
	}
	if limit > 100 {
		limit = 100
	}

	notifications, unread, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

// MarkRead marks the given notifications as read. IDs not owned by the
// user are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, notificationIDs []int64) error {
	return s.repo.MarkAsRead(ctx, userID, notificationIDs)
}

// MarkAllRead clears the user's unread badge.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
