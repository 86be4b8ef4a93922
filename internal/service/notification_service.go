package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/google/uuid"
)

var ErrNoNotificationIDs = errors.New("notificationIds or markAllAsRead is required")

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

type NotificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

type NotificationPage struct {
	Notifications []*domain.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"pageSize"`
	TotalPages    int                    `json:"totalPages"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// Send stores notifications best effort. A failure is logged and never
// reaches the action that triggered it.
func (s *NotificationService) Send(ctx context.Context, notifications ...*domain.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := s.repo.CreateMany(ctx, notifications); err != nil {
		s.logger.Error("failed to create notifications",
			"count", len(notifications),
			"error", err,
		)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultNotificationPageSize
	}
	if pageSize > maxNotificationPageSize {
		pageSize = maxNotificationPageSize
	}

	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{
		Notifications: items,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    int((total + int64(pageSize) - 1) / int64(pageSize)),
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, all bool) (int64, error) {
	if all {
		return s.repo.MarkAllRead(ctx, userID)
	}
	if len(ids) == 0 {
		return 0, ErrNoNotificationIDs
	}
	return s.repo.MarkRead(ctx, userID, ids)
}

func (s *NotificationService) Delete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoNotificationIDs
	}
	return s.repo.Delete(ctx, userID, ids)
}
