package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "happi-app-go/internal/domain/notifications"
	"happi-app-go/internal/domain/reference"
	"happi-app-go/internal/repository/repotest"
)

func seed(t *testing.T, db *gorm.DB, userID string, count int) []domain.Notification {
	t.Helper()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	items := make([]domain.Notification, 0, count)
	for i := 0; i < count; i++ {
		item := domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      "policy_expiring",
			Title:     "Policy expiring soon",
			Message:   "Renew before it lapses",
			Reference: reference.Policy(uuid.NewString()),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&item).Error)
		items = append(items, item)
	}
	return items
}

func TestListAndCount(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	owner := repotest.CreateUser(t, db, "a@example.com")
	items := seed(t, db, owner.ID, 3)

	list, err := repo.List(ctx, owner.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, items[2].ID, list[0].ID)
	assert.Equal(t, reference.KindPolicy, list[0].Reference.Kind)

	count, err := repo.Count(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMarkReadScoped(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	owner := repotest.CreateUser(t, db, "a@example.com")
	other := repotest.CreateUser(t, db, "b@example.com")
	mine := seed(t, db, owner.ID, 2)
	theirs := seed(t, db, other.ID, 1)

	assert.ErrorIs(t, repo.MarkRead(ctx, owner.ID, theirs[0].ID), domain.ErrNotificationNotFound)
	assert.ErrorIs(t, repo.MarkRead(ctx, owner.ID, "bad-id"), domain.ErrNotificationNotFound)
	require.NoError(t, repo.MarkRead(ctx, owner.ID, mine[0].ID))

	unread, err := repo.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	updated, err := repo.MarkAllRead(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	otherUnread, err := repo.CountUnread(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherUnread)
}
