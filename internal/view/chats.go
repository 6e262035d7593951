// Package view derives display data from store snapshots. Nothing here
// mutates its inputs.
package view

import (
	"sort"
	"strings"
	"time"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"
)

type ChatFilter string

const (
	FilterAll      ChatFilter = "all"
	FilterUnread   ChatFilter = "unread"
	FilterArchived ChatFilter = "archived"
)

// ParseChatFilter accepts "", "all", "unread" and "archived".
func ParseChatFilter(s string) (ChatFilter, error) {
	switch f := ChatFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterUnread, FilterArchived:
		return f, nil
	}
	return "", apperrors.Validation("unknown chat filter %q", s)
}

// FilterChats keeps the chats whose other participant's name contains search
// (case-insensitive) and that pass filter. FilterAll includes archived chats.
func FilterChats(chats []*models.Chat, currentUserID, search string, filter ChatFilter) []*models.Chat {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := []*models.Chat{}
	for _, chat := range chats {
		if needle != "" {
			other, ok := chat.OtherParticipant(currentUserID)
			if !ok || !strings.Contains(strings.ToLower(other.Name), needle) {
				continue
			}
		}
		switch filter {
		case FilterUnread:
			if chat.UnreadFor(currentUserID) == 0 {
				continue
			}
		case FilterArchived:
			if !chat.Archived {
				continue
			}
		}
		out = append(out, chat)
	}
	return out
}

// SortChats returns a copy of chats ordered by last message, newest first.
// Chats without messages go last and keep their relative order.
func SortChats(chats []*models.Chat) []*models.Chat {
	out := append([]*models.Chat(nil), chats...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].LastMessage()
		b, bok := out[j].LastMessage()
		if !aok || !bok {
			return aok && !bok
		}
		return a.Timestamp.After(b.Timestamp)
	})
	return out
}

// ChatSummary is one row of a chat list.
type ChatSummary struct {
	Chat        *models.Chat    `json:"chat"`
	Other       models.User     `json:"other"`
	LastMessage *models.Message `json:"last_message,omitempty"`
	Unread      int             `json:"unread"`
	TimeLabel   string          `json:"time_label"`
}

// Summaries builds list rows for chats, in the given order. The time label
// follows the last message, or the chat's update time when it has none.
func Summaries(chats []*models.Chat, currentUserID string, now time.Time, loc *time.Location, locale Locale) []ChatSummary {
	out := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		other, _ := chat.OtherParticipant(currentUserID)
		summary := ChatSummary{
			Chat:   chat,
			Other:  other,
			Unread: chat.UnreadFor(currentUserID),
		}
		at := chat.UpdatedAt
		if last, ok := chat.LastMessage(); ok {
			summary.LastMessage = &last
			at = last.Timestamp
		}
		if !at.IsZero() {
			summary.TimeLabel = FormatChatTime(at, now, loc, locale)
		}
		out = append(out, summary)
	}
	return out
}
