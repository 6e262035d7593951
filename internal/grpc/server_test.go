package grpc

import (
	"context"
	"io"
	"testing"

	"cargahub/messaging-service/internal/directory"
	"cargahub/messaging-service/internal/models"
	"cargahub/messaging-service/internal/repository"
	"cargahub/messaging-service/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/kegazani/metachat-proto/chat"
)

func newTestServer() *ChatServer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := directory.NewStaticProvider([]models.User{
		{ID: "u1", Name: "Ana", Type: models.UserTypeShipper},
		{ID: "u2", Name: "Bruno", Type: models.UserTypeCarrier},
		{ID: "u3", Name: "Carla", Type: models.UserTypeFleet},
	})
	svc := service.NewChatService(repository.NewChatRepository(), users, logger)
	return NewChatServer(svc, logger)
}

func TestChatFlow(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer()

	created, err := srv.CreateChat(ctx, &pb.CreateChatRequest{UserId1: "u1", UserId2: "u2"})
	require.NoError(t, err)
	chatID := created.Chat.Id
	assert.Equal(t, "u1", created.Chat.UserId1)
	assert.Equal(t, "u2", created.Chat.UserId2)

	again, err := srv.CreateChat(ctx, &pb.CreateChatRequest{UserId1: "u2", UserId2: "u1"})
	require.NoError(t, err)
	assert.Equal(t, chatID, again.Chat.Id)

	sent, err := srv.SendMessage(ctx, &pb.SendMessageRequest{ChatId: chatID, SenderId: "u1", Content: "Carga disponível"})
	require.NoError(t, err)
	assert.Equal(t, "u1", sent.Message.SenderId)
	assert.Nil(t, sent.Message.ReadAt)

	messages, err := srv.GetChatMessages(ctx, &pb.GetChatMessagesRequest{ChatId: chatID})
	require.NoError(t, err)
	require.Len(t, messages.Messages, 1)
	assert.Equal(t, "Carga disponível", messages.Messages[0].Content)

	marked, err := srv.MarkMessagesAsRead(ctx, &pb.MarkMessagesAsReadRequest{ChatId: chatID, UserId: "u2"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), marked.MarkedCount)

	chats, err := srv.GetUserChats(ctx, &pb.GetUserChatsRequest{UserId: "u2"})
	require.NoError(t, err)
	assert.Len(t, chats.Chats, 1)

	got, err := srv.GetChat(ctx, &pb.GetChatRequest{ChatId: chatID})
	require.NoError(t, err)
	assert.Equal(t, chatID, got.Chat.Id)
}

func TestStatusCodes(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer()

	created, err := srv.CreateChat(ctx, &pb.CreateChatRequest{UserId1: "u1", UserId2: "u2"})
	require.NoError(t, err)

	_, err = srv.GetChat(ctx, &pb.GetChatRequest{ChatId: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = srv.CreateChat(ctx, &pb.CreateChatRequest{UserId1: "u1", UserId2: "u1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.SendMessage(ctx, &pb.SendMessageRequest{ChatId: created.Chat.Id, SenderId: "u3", Content: "oi"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = srv.SendMessage(ctx, &pb.SendMessageRequest{ChatId: created.Chat.Id, SenderId: "u1", Content: "  "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.MarkMessagesAsRead(ctx, &pb.MarkMessagesAsReadRequest{ChatId: "missing", UserId: "u1"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
