package service

import (
	"context"
	"strings"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/directory"
	"cargahub/messaging-service/internal/metrics"
	"cargahub/messaging-service/internal/models"
	"cargahub/messaging-service/internal/repository"
	"cargahub/messaging-service/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

type ChatService interface {
	Create(ctx context.Context, otherUserID, cargoID string) (*models.Chat, error)
	Get(ctx context.Context, chatID string) (*models.Chat, error)
	Chats(ctx context.Context) ([]*models.Chat, error)
	Send(ctx context.Context, chatID, content string, attachments []models.Attachment) (*models.Message, error)
	Messages(ctx context.Context, chatID string, limit int, beforeMessageID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, chatID string) (int, error)
	Archive(ctx context.Context, chatID string) error
	Unarchive(ctx context.Context, chatID string) error
	Delete(ctx context.Context, chatID string) error
	UnreadCount(ctx context.Context) (int, error)
	Subscribe(l Listener) func()
}

type chatService struct {
	repository repository.ChatRepository
	users      directory.Provider
	logger     *logrus.Logger
	opts       options
	observers  observers
}

func NewChatService(repo repository.ChatRepository, users directory.Provider, logger *logrus.Logger, opts ...Option) ChatService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &chatService{
		repository: repo,
		users:      users,
		logger:     logger,
		opts:       o,
	}
}

func (s *chatService) Create(ctx context.Context, otherUserID, cargoID string) (*models.Chat, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == otherUserID {
		return nil, apperrors.Validation("cannot create chat with yourself")
	}

	existingChat, err := s.repository.GetChatByUsers(ctx, userID, otherUserID, cargoID)
	if err == nil && existingChat != nil {
		return existingChat, nil
	}

	me, err := s.users.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.users.User(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	chat := &models.Chat{
		ID:           uuid.New().String(),
		CargoID:      cargoID,
		Participants: []models.User{me, other},
		Messages:     []models.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, created, err := s.repository.CreateChatIfAbsent(ctx, chat)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create chat")
		return nil, err
	}
	if !created {
		return stored, nil
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id":  stored.ID,
		"user_id1": userID,
		"user_id2": otherUserID,
		"cargo_id": cargoID,
	}).Info("Chat created")

	s.observers.publish(Change{Kind: ChatCreated, UserID: userID, ID: stored.ID})
	return stored, nil
}

// participantChat loads chatID and checks that the acting user, when there
// is one, takes part in it.
func (s *chatService) participantChat(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.repository.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if userID := session.UserID(ctx); userID != "" && !chat.HasParticipant(userID) {
		return nil, apperrors.PermissionDenied("user is not a participant in this chat")
	}
	return chat, nil
}

func (s *chatService) Get(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.participantChat(ctx, chatID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.WithError(err).Error("Failed to get chat")
		}
		return nil, err
	}
	return chat, nil
}

func (s *chatService) Chats(ctx context.Context) ([]*models.Chat, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	chats, err := s.repository.GetUserChats(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get user chats")
		return nil, err
	}
	return chats, nil
}

func (s *chatService) Send(ctx context.Context, chatID, content string, attachments []models.Attachment) (*models.Message, error) {
	senderID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.repository.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return nil, apperrors.Validation("message has no content")
	}
	if !chat.HasParticipant(senderID) {
		return nil, apperrors.PermissionDenied("user is not a participant in this chat")
	}

	msg := &models.Message{
		ID:          uuid.New().String(),
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     content,
		Attachments: attachments,
		Timestamp:   s.opts.now(),
		Read:        false,
	}

	if err := s.repository.CreateMessage(ctx, msg); err != nil {
		s.logger.WithError(err).Error("Failed to send message")
		return nil, err
	}
	metrics.MessagesSent.Inc()

	s.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"chat_id":    chatID,
		"sender_id":  senderID,
	}).Info("Message sent")

	s.observers.publish(Change{Kind: ChatMessageSent, UserID: senderID, ID: chatID})
	return msg, nil
}

func (s *chatService) Messages(ctx context.Context, chatID string, limit int, beforeMessageID string) ([]*models.Message, error) {
	if _, err := s.participantChat(ctx, chatID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	messages, err := s.repository.GetChatMessages(ctx, chatID, limit, beforeMessageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get chat messages")
		return nil, err
	}
	return messages, nil
}

func (s *chatService) MarkRead(ctx context.Context, chatID string) (int, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.participantChat(ctx, chatID); err != nil {
		return 0, err
	}

	count, err := s.repository.MarkMessagesAsRead(ctx, chatID, userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to mark messages as read")
		return 0, err
	}

	s.observers.publish(Change{Kind: ChatRead, UserID: userID, ID: chatID})
	return count, nil
}

func (s *chatService) Archive(ctx context.Context, chatID string) error {
	return s.setArchived(ctx, chatID, true)
}

func (s *chatService) Unarchive(ctx context.Context, chatID string) error {
	return s.setArchived(ctx, chatID, false)
}

func (s *chatService) setArchived(ctx context.Context, chatID string, archived bool) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.participantChat(ctx, chatID); err != nil {
		return err
	}
	if err := s.repository.SetArchived(ctx, chatID, archived); err != nil {
		return err
	}

	kind := ChatUnarchived
	if archived {
		kind = ChatArchived
	}
	s.observers.publish(Change{Kind: kind, UserID: userID, ID: chatID})
	return nil
}

func (s *chatService) Delete(ctx context.Context, chatID string) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.participantChat(ctx, chatID); err != nil {
		return err
	}
	if err := s.repository.DeleteChat(ctx, chatID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"user_id": userID,
	}).Info("Chat deleted")

	s.observers.publish(Change{Kind: ChatDeleted, UserID: userID, ID: chatID})
	return nil
}

// UnreadCount sums, over the acting user's chats, the messages sent by
// someone else that are still unread. Archived chats count too.
func (s *chatService) UnreadCount(ctx context.Context) (int, error) {
	chats, err := s.Chats(ctx)
	if err != nil {
		return 0, err
	}
	userID := session.UserID(ctx)
	total := 0
	for _, chat := range chats {
		total += chat.UnreadFor(userID)
	}
	return total, nil
}

func (s *chatService) Subscribe(l Listener) func() {
	return s.observers.subscribe(l)
}
