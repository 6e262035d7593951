package models

import (
	"time"
)

type NotificationType string

const (
	NotificationProposal NotificationType = "proposal"
	NotificationMessage  NotificationType = "message"
	NotificationDelivery NotificationType = "delivery"
	NotificationPayment  NotificationType = "payment"
	NotificationRating   NotificationType = "rating"
	NotificationAlert    NotificationType = "alert"
	NotificationSystem   NotificationType = "system"
)

var NotificationTypes = []NotificationType{
	NotificationProposal,
	NotificationMessage,
	NotificationDelivery,
	NotificationPayment,
	NotificationRating,
	NotificationAlert,
	NotificationSystem,
}

func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Notification struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Type      NotificationType      `json:"type"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Timestamp time.Time             `json:"timestamp"`
	Read      bool                  `json:"read"`
	Priority  Priority              `json:"priority"`
	ActionURL string                `json:"action_url,omitempty"`
	Metadata  *NotificationMetadata `json:"metadata,omitempty"`
}

type NotificationMetadata struct {
	Amount     *float64 `json:"amount,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	CargoID    string   `json:"cargo_id,omitempty"`
	ChatID     string   `json:"chat_id,omitempty"`
	ProposalID string   `json:"proposal_id,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
}

// NotificationDraft is a notification before the store assigns its identity.
type NotificationDraft struct {
	UserID    string                `json:"user_id"`
	Type      NotificationType      `json:"type"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Priority  Priority              `json:"priority"`
	ActionURL string                `json:"action_url,omitempty"`
	Metadata  *NotificationMetadata `json:"metadata,omitempty"`
}

func (n *Notification) Clone() *Notification {
	out := *n
	if n.Metadata != nil {
		md := *n.Metadata
		out.Metadata = &md
	}
	return &out
}
