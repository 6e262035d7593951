package grpc

import (
	"context"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"
	"cargahub/messaging-service/internal/service"
	"cargahub/messaging-service/internal/session"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	pb "github.com/kegazani/metachat-proto/chat"
)

// ChatServer exposes the chat store over gRPC. Requests name the acting
// user explicitly; it is placed in the context before calling the service.
type ChatServer struct {
	pb.UnimplementedChatServiceServer
	service service.ChatService
	logger  *logrus.Logger
}

func NewChatServer(svc service.ChatService, logger *logrus.Logger) *ChatServer {
	return &ChatServer{
		service: svc,
		logger:  logger,
	}
}

// toStatus maps service errors onto gRPC status codes.
func toStatus(err error, action string) error {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperrors.CodeValidationFailed:
		return status.Error(codes.InvalidArgument, err.Error())
	case apperrors.CodePermissionDenied:
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Errorf(codes.Internal, "failed to %s: %v", action, err)
	}
}

func (s *ChatServer) CreateChat(ctx context.Context, req *pb.CreateChatRequest) (*pb.CreateChatResponse, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id1": req.UserId1,
		"user_id2": req.UserId2,
	}).Info("Creating chat via gRPC")

	chat, err := s.service.Create(session.WithUser(ctx, req.UserId1), req.UserId2, "")
	if err != nil {
		s.logger.WithError(err).Error("Failed to create chat")
		return nil, toStatus(err, "create chat")
	}

	return &pb.CreateChatResponse{
		Chat: s.chatToProto(chat),
	}, nil
}

func (s *ChatServer) GetChat(ctx context.Context, req *pb.GetChatRequest) (*pb.GetChatResponse, error) {
	s.logger.WithField("chat_id", req.ChatId).Info("Getting chat via gRPC")

	chat, err := s.service.Get(ctx, req.ChatId)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get chat")
		return nil, toStatus(err, "get chat")
	}

	return &pb.GetChatResponse{
		Chat: s.chatToProto(chat),
	}, nil
}

func (s *ChatServer) GetUserChats(ctx context.Context, req *pb.GetUserChatsRequest) (*pb.GetUserChatsResponse, error) {
	s.logger.WithField("user_id", req.UserId).Info("Getting user chats via gRPC")

	chats, err := s.service.Chats(session.WithUser(ctx, req.UserId))
	if err != nil {
		s.logger.WithError(err).Error("Failed to get user chats")
		return nil, toStatus(err, "get user chats")
	}

	protoChats := make([]*pb.Chat, len(chats))
	for i, c := range chats {
		protoChats[i] = s.chatToProto(c)
	}

	return &pb.GetUserChatsResponse{
		Chats: protoChats,
	}, nil
}

func (s *ChatServer) SendMessage(ctx context.Context, req *pb.SendMessageRequest) (*pb.SendMessageResponse, error) {
	s.logger.WithFields(logrus.Fields{
		"chat_id":   req.ChatId,
		"sender_id": req.SenderId,
	}).Info("Sending message via gRPC")

	msg, err := s.service.Send(session.WithUser(ctx, req.SenderId), req.ChatId, req.Content, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to send message")
		return nil, toStatus(err, "send message")
	}

	return &pb.SendMessageResponse{
		Message: s.messageToProto(msg),
	}, nil
}

func (s *ChatServer) GetChatMessages(ctx context.Context, req *pb.GetChatMessagesRequest) (*pb.GetChatMessagesResponse, error) {
	s.logger.WithField("chat_id", req.ChatId).Info("Getting chat messages via gRPC")

	messages, err := s.service.Messages(ctx, req.ChatId, int(req.Limit), req.BeforeMessageId)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get chat messages")
		return nil, toStatus(err, "get chat messages")
	}

	protoMessages := make([]*pb.Message, len(messages))
	for i, m := range messages {
		protoMessages[i] = s.messageToProto(m)
	}

	return &pb.GetChatMessagesResponse{
		Messages: protoMessages,
	}, nil
}

func (s *ChatServer) MarkMessagesAsRead(ctx context.Context, req *pb.MarkMessagesAsReadRequest) (*pb.MarkMessagesAsReadResponse, error) {
	s.logger.WithFields(logrus.Fields{
		"chat_id": req.ChatId,
		"user_id": req.UserId,
	}).Info("Marking messages as read via gRPC")

	count, err := s.service.MarkRead(session.WithUser(ctx, req.UserId), req.ChatId)
	if err != nil {
		s.logger.WithError(err).Error("Failed to mark messages as read")
		return nil, toStatus(err, "mark messages as read")
	}

	return &pb.MarkMessagesAsReadResponse{
		MarkedCount: int32(count),
	}, nil
}

// chatToProto keeps the first two participants; the wire type has no room
// for the cargo reference or the message list.
func (s *ChatServer) chatToProto(chat *models.Chat) *pb.Chat {
	protoChat := &pb.Chat{
		Id:        chat.ID,
		CreatedAt: timestamppb.New(chat.CreatedAt),
		UpdatedAt: timestamppb.New(chat.UpdatedAt),
	}
	if len(chat.Participants) > 0 {
		protoChat.UserId1 = chat.Participants[0].ID
	}
	if len(chat.Participants) > 1 {
		protoChat.UserId2 = chat.Participants[1].ID
	}
	return protoChat
}

// messageToProto leaves ReadAt unset; the store records whether a message
// was read, not when.
func (s *ChatServer) messageToProto(msg *models.Message) *pb.Message {
	return &pb.Message{
		Id:        msg.ID,
		ChatId:    msg.ChatID,
		SenderId:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: timestamppb.New(msg.Timestamp),
	}
}
