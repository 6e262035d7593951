package models

type NotificationSettings struct {
	EnablePush  bool                    `json:"enablePush"`
	EnableEmail bool                    `json:"enableEmail"`
	EnableSMS   bool                    `json:"enableSMS"`
	Types       NotificationTypeToggles `json:"types"`
	QuietHours  QuietHours              `json:"quietHours"`
}

// NotificationTypeToggles toggles delivery per notification type.
type NotificationTypeToggles struct {
	Proposals  bool `json:"proposals"`
	Messages   bool `json:"messages"`
	Deliveries bool `json:"deliveries"`
	Payments   bool `json:"payments"`
	Ratings    bool `json:"ratings"`
	Alerts     bool `json:"alerts"`
	System     bool `json:"system"`
}

type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EnablePush:  true,
		EnableEmail: true,
		EnableSMS:   false,
		Types: NotificationTypeToggles{
			Proposals:  true,
			Messages:   true,
			Deliveries: true,
			Payments:   true,
			Ratings:    true,
			Alerts:     true,
			System:     true,
		},
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "22:00",
			End:     "08:00",
		},
	}
}

// Enabled reports whether notifications of type t may be delivered.
func (t NotificationTypeToggles) Enabled(nt NotificationType) bool {
	switch nt {
	case NotificationProposal:
		return t.Proposals
	case NotificationMessage:
		return t.Messages
	case NotificationDelivery:
		return t.Deliveries
	case NotificationPayment:
		return t.Payments
	case NotificationRating:
		return t.Ratings
	case NotificationAlert:
		return t.Alerts
	case NotificationSystem:
		return t.System
	}
	return false
}
