package repository

import (
	"context"
	"testing"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, repo NotificationRepository, userID string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, repo.CreateNotification(context.Background(), &models.Notification{
			ID:       id,
			UserID:   userID,
			Type:     models.NotificationMessage,
			Priority: models.PriorityMedium,
		}))
	}
}

func TestNotificationsInsertedAtHead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	seedNotifications(t, repo, "u1", "n1", "n2", "n3")
	seedNotifications(t, repo, "u2", "other")

	feed, err := repo.GetUserNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "n3", feed[0].ID)
	assert.Equal(t, "n2", feed[1].ID)
	assert.Equal(t, "n1", feed[2].ID)
}

func TestNotificationMarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	seedNotifications(t, repo, "u1", "n1", "n2")

	require.NoError(t, repo.MarkAsRead(ctx, "u1", "n1"))
	require.NoError(t, repo.MarkAsRead(ctx, "u1", "n1"), "marking twice is not an error")

	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	assert.True(t, apperrors.IsNotFound(repo.MarkAsRead(ctx, "u1", "missing")))
	assert.True(t, apperrors.IsNotFound(repo.MarkAsRead(ctx, "u2", "n1")), "feeds are per recipient")
}

func TestNotificationMarkAllAsRead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	seedNotifications(t, repo, "u1", "n1", "n2", "n3")
	require.NoError(t, repo.MarkAsRead(ctx, "u1", "n2"))

	count, err := repo.MarkAllAsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.MarkAllAsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNotificationDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	seedNotifications(t, repo, "u1", "n1", "n2")

	require.NoError(t, repo.DeleteNotification(ctx, "u1", "n1"))
	assert.True(t, apperrors.IsNotFound(repo.DeleteNotification(ctx, "u1", "n1")))

	feed, err := repo.GetUserNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "n2", feed[0].ID)
}
