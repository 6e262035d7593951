package models

import (
	"time"
)

type Chat struct {
	ID           string    `json:"id"`
	CargoID      string    `json:"cargo_id,omitempty"`
	Participants []User    `json:"participants"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Archived     bool      `json:"archived"`
}

type Message struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chat_id"`
	SenderID    string       `json:"sender_id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Read        bool         `json:"read"`
}

type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// HasParticipant reports whether userID is one of the chat's participants.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the first participant that is not userID.
func (c *Chat) OtherParticipant(userID string) (User, bool) {
	for _, p := range c.Participants {
		if p.ID != userID {
			return p, true
		}
	}
	return User{}, false
}

// LastMessage returns the most recently appended message, if any.
func (c *Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// UnreadFor counts messages authored by someone other than userID that are still unread.
func (c *Chat) UnreadFor(userID string) int {
	count := 0
	for _, m := range c.Messages {
		if m.SenderID != userID && !m.Read {
			count++
		}
	}
	return count
}

// Clone returns a deep copy so callers can't mutate store-owned slices.
func (c *Chat) Clone() *Chat {
	out := *c
	out.Participants = make([]User, len(c.Participants))
	for i, u := range c.Participants {
		out.Participants[i] = u.Clone()
	}
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Attachments = append([]Attachment(nil), m.Attachments...)
		out.Messages[i] = m
	}
	return &out
}
