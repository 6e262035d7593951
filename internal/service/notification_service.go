package service

import (
	"context"
	"time"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/events"
	"cargahub/messaging-service/internal/metrics"
	"cargahub/messaging-service/internal/models"
	"cargahub/messaging-service/internal/push"
	"cargahub/messaging-service/internal/repository"
	"cargahub/messaging-service/internal/session"
	"cargahub/messaging-service/internal/settings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type NotificationService interface {
	Add(ctx context.Context, draft models.NotificationDraft) (string, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	ByType(ctx context.Context, t models.NotificationType) ([]*models.Notification, error)
	ByPriority(ctx context.Context, p models.Priority) ([]*models.Notification, error)
	Settings(ctx context.Context) (models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, s models.NotificationSettings) error
	Subscribe(l Listener) func()
	Consume(ctx context.Context, source events.Source) error
}

// Option tunes a service at construction.
type Option func(*options)

type options struct {
	now      func() time.Time
	location *time.Location
	icon     string
}

func defaultOptions() options {
	return options{now: time.Now, location: time.Local}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone quiet hours are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithIcon sets the icon attached to system notifications.
func WithIcon(icon string) Option {
	return func(o *options) { o.icon = icon }
}

type notificationService struct {
	repository repository.NotificationRepository
	settings   settings.Repository
	pusher     push.Pusher
	logger     *logrus.Logger
	opts       options
	observers  observers
}

func NewNotificationService(repo repository.NotificationRepository, settingsRepo settings.Repository, pusher push.Pusher, logger *logrus.Logger, opts ...Option) NotificationService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if pusher == nil {
		pusher = push.Disabled{}
	}
	return &notificationService{
		repository: repo,
		settings:   settingsRepo,
		pusher:     pusher,
		logger:     logger,
		opts:       o,
	}
}

// actingUser returns the session user or a PermissionDenied error.
func actingUser(ctx context.Context) (string, error) {
	userID := session.UserID(ctx)
	if userID == "" {
		return "", apperrors.PermissionDenied("no acting user")
	}
	return userID, nil
}

func (s *notificationService) Add(ctx context.Context, draft models.NotificationDraft) (string, error) {
	recipient := draft.UserID
	if recipient == "" {
		recipient = session.UserID(ctx)
	}
	if recipient == "" {
		return "", apperrors.Validation("notification has no recipient")
	}
	if !draft.Type.Valid() {
		return "", apperrors.Validation("unknown notification type %q", draft.Type)
	}
	if draft.Priority == "" {
		draft.Priority = models.PriorityMedium
	}
	if !draft.Priority.Valid() {
		return "", apperrors.Validation("unknown priority %q", draft.Priority)
	}

	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    recipient,
		Type:      draft.Type,
		Title:     draft.Title,
		Message:   draft.Message,
		Timestamp: s.opts.now(),
		Read:      false,
		Priority:  draft.Priority,
		ActionURL: draft.ActionURL,
		Metadata:  draft.Metadata,
	}

	if err := s.repository.CreateNotification(ctx, n); err != nil {
		s.logger.WithError(err).Error("Failed to store notification")
		return "", err
	}
	metrics.NotificationsAdded.WithLabelValues(string(n.Type)).Inc()

	s.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"type":            n.Type,
		"priority":        n.Priority,
	}).Info("Notification added")

	s.observers.publish(Change{Kind: NotificationAdded, UserID: n.UserID, ID: n.ID})
	s.deliver(ctx, n)

	return n.ID, nil
}

// deliver shows n as a system notification unless the recipient's settings
// or the platform permission say otherwise. Failures never reach the caller.
func (s *notificationService) deliver(ctx context.Context, n *models.Notification) {
	log := s.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"user_id":         n.UserID,
	})

	prefs, err := s.settings.Load(ctx, n.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to load notification settings, skipping push")
		metrics.PushSkipped.WithLabelValues("settings_unavailable").Inc()
		return
	}

	reason := ""
	switch {
	case !prefs.EnablePush:
		reason = "push_disabled"
	case !prefs.Types.Enabled(n.Type):
		reason = "type_disabled"
	case inQuietHours(prefs.QuietHours, s.opts.now().In(s.opts.location)):
		reason = "quiet_hours"
	}
	if reason != "" {
		log.WithField("reason", reason).Debug("Push suppressed")
		metrics.PushSkipped.WithLabelValues(reason).Inc()
		return
	}

	err = push.Deliver(ctx, s.pusher, push.FromNotification(n, s.opts.icon))
	switch {
	case apperrors.IsPermissionDenied(err):
		log.WithError(err).Info("Push permission not granted")
		metrics.PushSkipped.WithLabelValues("permission_denied").Inc()
	case err != nil:
		log.WithError(err).Warn("Failed to deliver push notification")
		metrics.PushSkipped.WithLabelValues("error").Inc()
	default:
		metrics.PushDelivered.Inc()
	}
}

func (s *notificationService) MarkAsRead(ctx context.Context, id string) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}
	if err := s.repository.MarkAsRead(ctx, userID, id); err != nil {
		return err
	}
	s.observers.publish(Change{Kind: NotificationRead, UserID: userID, ID: id})
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context) (int, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return 0, err
	}
	count, err := s.repository.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to mark notifications as read")
		return 0, err
	}
	s.observers.publish(Change{Kind: NotificationsAllRead, UserID: userID})
	return count, nil
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}
	if err := s.repository.DeleteNotification(ctx, userID, id); err != nil {
		return err
	}
	s.observers.publish(Change{Kind: NotificationDeleted, UserID: userID, ID: id})
	return nil
}

func (s *notificationService) List(ctx context.Context) ([]*models.Notification, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repository.GetUserNotifications(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.repository.CountUnread(ctx, userID)
}

func (s *notificationService) ByType(ctx context.Context, t models.NotificationType) ([]*models.Notification, error) {
	if !t.Valid() {
		return nil, apperrors.Validation("unknown notification type %q", t)
	}
	return s.filter(ctx, func(n *models.Notification) bool { return n.Type == t })
}

func (s *notificationService) ByPriority(ctx context.Context, p models.Priority) ([]*models.Notification, error) {
	if !p.Valid() {
		return nil, apperrors.Validation("unknown priority %q", p)
	}
	return s.filter(ctx, func(n *models.Notification) bool { return n.Priority == p })
}

func (s *notificationService) filter(ctx context.Context, keep func(*models.Notification) bool) ([]*models.Notification, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*models.Notification{}
	for _, n := range all {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *notificationService) Settings(ctx context.Context) (models.NotificationSettings, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	prefs, err := s.settings.Load(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to load notification settings")
		return models.NotificationSettings{}, err
	}
	return prefs, nil
}

func (s *notificationService) UpdateSettings(ctx context.Context, prefs models.NotificationSettings) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}
	if err := settings.Validate(prefs); err != nil {
		return err
	}
	if err := s.settings.Save(ctx, userID, prefs); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to save notification settings")
		return err
	}
	s.logger.WithField("user_id", userID).Info("Notification settings updated")
	return nil
}

func (s *notificationService) Subscribe(l Listener) func() {
	return s.observers.subscribe(l)
}

// Consume adds every draft the source produces until ctx is cancelled.
// Drafts that fail validation are reported back to the source.
func (s *notificationService) Consume(ctx context.Context, source events.Source) error {
	err := source.Run(ctx, func(ctx context.Context, draft models.NotificationDraft) error {
		_, err := s.Add(ctx, draft)
		return err
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
