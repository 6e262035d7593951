package repository

import (
	"context"
	"sync"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"
)

type ChatRepository interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	CreateChatIfAbsent(ctx context.Context, chat *models.Chat) (*models.Chat, bool, error)
	GetChatByID(ctx context.Context, id string) (*models.Chat, error)
	GetChatByUsers(ctx context.Context, userID1, userID2, cargoID string) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error)
	SetArchived(ctx context.Context, id string, archived bool) error
	DeleteChat(ctx context.Context, id string) error
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetChatMessages(ctx context.Context, chatID string, limit int, beforeMessageID string) ([]*models.Message, error)
	MarkMessagesAsRead(ctx context.Context, chatID, userID string) (int, error)
}

// chatRepository keeps chats in process memory. Every method holds the lock
// for its whole mutation, so no two mutations interleave, and every returned
// value is a copy.
type chatRepository struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat
	order []string
}

func NewChatRepository() ChatRepository {
	return &chatRepository{
		chats: make(map[string]*models.Chat),
	}
}

func (r *chatRepository) CreateChat(ctx context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chats[chat.ID]; exists {
		return apperrors.Validation("chat %q already exists", chat.ID)
	}

	stored := chat.Clone()
	if stored.Messages == nil {
		stored.Messages = []models.Message{}
	}
	r.chats[chat.ID] = stored
	r.order = append(r.order, chat.ID)
	return nil
}

// CreateChatIfAbsent stores chat unless a chat between its first two
// participants about the same cargo already exists. It returns the stored
// chat and whether it was created by this call.
func (r *chatRepository) CreateChatIfAbsent(ctx context.Context, chat *models.Chat) (*models.Chat, bool, error) {
	if len(chat.Participants) < 2 {
		return nil, false, apperrors.Validation("chat %q needs two participants", chat.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findByUsers(chat.Participants[0].ID, chat.Participants[1].ID, chat.CargoID); existing != nil {
		return existing.Clone(), false, nil
	}
	if _, exists := r.chats[chat.ID]; exists {
		return nil, false, apperrors.Validation("chat %q already exists", chat.ID)
	}

	stored := chat.Clone()
	if stored.Messages == nil {
		stored.Messages = []models.Message{}
	}
	r.chats[chat.ID] = stored
	r.order = append(r.order, chat.ID)
	return stored.Clone(), true, nil
}

func (r *chatRepository) GetChatByID(ctx context.Context, id string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, apperrors.NotFound("chat", id)
	}
	return chat.Clone(), nil
}

func (r *chatRepository) GetChatByUsers(ctx context.Context, userID1, userID2, cargoID string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if chat := r.findByUsers(userID1, userID2, cargoID); chat != nil {
		return chat.Clone(), nil
	}
	return nil, apperrors.NotFound("chat between users", userID1+"/"+userID2)
}

// findByUsers expects r.mu to be held.
func (r *chatRepository) findByUsers(userID1, userID2, cargoID string) *models.Chat {
	for _, id := range r.order {
		chat := r.chats[id]
		if chat.CargoID == cargoID && chat.HasParticipant(userID1) && chat.HasParticipant(userID2) {
			return chat
		}
	}
	return nil
}

func (r *chatRepository) GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chats []*models.Chat
	for _, id := range r.order {
		chat := r.chats[id]
		if chat.HasParticipant(userID) {
			chats = append(chats, chat.Clone())
		}
	}
	return chats, nil
}

func (r *chatRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[id]
	if !ok {
		return apperrors.NotFound("chat", id)
	}
	chat.Archived = archived
	return nil
}

func (r *chatRepository) DeleteChat(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[id]; !ok {
		return apperrors.NotFound("chat", id)
	}
	delete(r.chats, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[msg.ChatID]
	if !ok {
		return apperrors.NotFound("chat", msg.ChatID)
	}

	stored := *msg
	stored.Attachments = append([]models.Attachment(nil), msg.Attachments...)
	chat.Messages = append(chat.Messages, stored)
	chat.UpdatedAt = msg.Timestamp
	return nil
}

func (r *chatRepository) GetChatMessages(ctx context.Context, chatID string, limit int, beforeMessageID string) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return nil, apperrors.NotFound("chat", chatID)
	}

	end := len(chat.Messages)
	if beforeMessageID != "" {
		end = -1
		for i, m := range chat.Messages {
			if m.ID == beforeMessageID {
				end = i
				break
			}
		}
		if end < 0 {
			return nil, apperrors.NotFound("message", beforeMessageID)
		}
	}

	start := 0
	if limit > 0 && end-limit > start {
		start = end - limit
	}

	messages := make([]*models.Message, 0, end-start)
	for _, m := range chat.Messages[start:end] {
		m.Attachments = append([]models.Attachment(nil), m.Attachments...)
		msg := m
		messages = append(messages, &msg)
	}
	return messages, nil
}

func (r *chatRepository) MarkMessagesAsRead(ctx context.Context, chatID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return 0, apperrors.NotFound("chat", chatID)
	}

	count := 0
	for i := range chat.Messages {
		if chat.Messages[i].SenderID != userID && !chat.Messages[i].Read {
			chat.Messages[i].Read = true
			count++
		}
	}
	return count, nil
}
