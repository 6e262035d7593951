// Package push is the platform delivery surface for system-level
// notifications.
package push

import (
	"context"
	"time"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"
)

// AutoDismissAfter is how long a non-urgent system notification stays visible.
const AutoDismissAfter = 5 * time.Second

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type SystemNotification struct {
	UserID             string        `json:"user_id"`
	Title              string        `json:"title"`
	Body               string        `json:"body"`
	Icon               string        `json:"icon"`
	Tag                string        `json:"tag"`
	RequireInteraction bool          `json:"require_interaction"`
	AutoDismiss        time.Duration `json:"auto_dismiss"`
}

// Pusher shows system notifications once the platform has granted permission.
type Pusher interface {
	Permission(ctx context.Context, userID string) (Permission, error)
	Show(ctx context.Context, n SystemNotification) error
}

// FromNotification builds the system notification shown for n. Urgent
// notifications stay until the user interacts with them.
func FromNotification(n *models.Notification, icon string) SystemNotification {
	sn := SystemNotification{
		UserID: n.UserID,
		Title:  n.Title,
		Body:   n.Message,
		Icon:   icon,
		Tag:    n.ID,
	}
	if n.Priority == models.PriorityUrgent {
		sn.RequireInteraction = true
	} else {
		sn.AutoDismiss = AutoDismissAfter
	}
	return sn
}

// Deliver checks permission and shows n. It returns a PermissionDenied error
// without calling Show when permission has not been granted.
func Deliver(ctx context.Context, p Pusher, n SystemNotification) error {
	permission, err := p.Permission(ctx, n.UserID)
	if err != nil {
		return err
	}
	if permission != PermissionGranted {
		return apperrors.PermissionDenied("push permission is %s", permission)
	}
	return p.Show(ctx, n)
}

// Disabled is a Pusher for deployments without a delivery gateway.
type Disabled struct{}

func (Disabled) Permission(ctx context.Context, userID string) (Permission, error) {
	return PermissionDenied, nil
}

func (Disabled) Show(ctx context.Context, n SystemNotification) error {
	return apperrors.PermissionDenied("push delivery is disabled")
}
