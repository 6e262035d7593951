package view

import (
	"time"

	"cargahub/messaging-service/internal/models"
)

type GroupedMessage struct {
	models.Message
	ShowAvatar bool `json:"show_avatar"`
}

// MessageGroup holds the messages of one local calendar date. Date is
// midnight of that date in the grouping location.
type MessageGroup struct {
	Date     time.Time        `json:"date"`
	Messages []GroupedMessage `json:"messages"`
}

// GroupMessagesByDate splits messages into runs that share a calendar date in
// loc. Within a group a message shows its sender's avatar unless the message
// right before it came from the same sender.
func GroupMessagesByDate(messages []models.Message, loc *time.Location) []MessageGroup {
	groups := []MessageGroup{}
	for _, m := range messages {
		y, mo, d := m.Timestamp.In(loc).Date()
		day := time.Date(y, mo, d, 0, 0, 0, 0, loc)

		if len(groups) == 0 || !groups[len(groups)-1].Date.Equal(day) {
			groups = append(groups, MessageGroup{Date: day})
		}
		group := &groups[len(groups)-1]

		show := true
		if n := len(group.Messages); n > 0 {
			show = group.Messages[n-1].SenderID != m.SenderID
		}
		group.Messages = append(group.Messages, GroupedMessage{Message: m, ShowAvatar: show})
	}
	return groups
}
