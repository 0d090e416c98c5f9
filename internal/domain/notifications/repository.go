package notifications

import "context"

type Repository interface {
	List(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead returns ErrNotificationNotFound unless the notification belongs
	// to userID.
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
