package notifications

import (
	"context"
	"strings"

	"happi-app-go/internal/pagination"
)

const RecentLimit = 5

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string, page int) (pagination.Page[Notification], error) {
	page, perPage := pagination.Normalize(page, pagination.DefaultPerPage)
	total, err := s.repo.Count(ctx, userID)
	if err != nil {
		return pagination.Page[Notification]{}, err
	}
	items, err := s.repo.List(ctx, userID, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return pagination.Page[Notification]{}, err
	}
	return pagination.New(items, page, perPage, total), nil
}

// Recent returns the newest limit notifications, RecentLimit when limit is
// not positive.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	items, err := s.repo.List(ctx, userID, limit, 0)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Notification{}
	}
	return items, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return ErrNotificationNotFound
	}
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
