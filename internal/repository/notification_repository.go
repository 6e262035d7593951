package repository

import (
	"context"
	"sync"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetUserNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, userID, id string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// notificationRepository keeps one feed per recipient, newest first.
type notificationRepository struct {
	mu    sync.RWMutex
	feeds map[string][]*models.Notification
}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{
		feeds: make(map[string][]*models.Notification),
	}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feed := r.feeds[n.UserID]
	feed = append(feed, nil)
	copy(feed[1:], feed)
	feed[0] = n.Clone()
	r.feeds[n.UserID] = feed
	return nil
}

func (r *notificationRepository) GetUserNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feed := r.feeds[userID]
	out := make([]*models.Notification, len(feed))
	for i, n := range feed {
		out[i] = n.Clone()
	}
	return out, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.feeds[userID] {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return apperrors.NotFound("notification", id)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.feeds[userID] {
		if !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) DeleteNotification(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feed := r.feeds[userID]
	for i, n := range feed {
		if n.ID == id {
			r.feeds[userID] = append(feed[:i], feed[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("notification", id)
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.feeds[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
