package push

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafkago.Message
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFromNotificationAutoDismiss(t *testing.T) {
	n := &models.Notification{ID: "n1", UserID: "u1", Title: "New proposal", Message: "R$ 1.200", Priority: models.PriorityMedium}

	sn := FromNotification(n, "/icon.png")
	assert.Equal(t, "n1", sn.Tag)
	assert.Equal(t, "New proposal", sn.Title)
	assert.Equal(t, "R$ 1.200", sn.Body)
	assert.False(t, sn.RequireInteraction)
	assert.Equal(t, 5*time.Second, sn.AutoDismiss)

	n.Priority = models.PriorityUrgent
	sn = FromNotification(n, "/icon.png")
	assert.True(t, sn.RequireInteraction)
	assert.Zero(t, sn.AutoDismiss)
}

func TestDeliverRequiresPermission(t *testing.T) {
	writer := &recordingWriter{}
	pusher := &KafkaPusher{writer: writer, permission: PermissionDefault, logger: quietLogger()}

	err := Deliver(context.Background(), pusher, SystemNotification{UserID: "u1", Tag: "n1"})
	assert.True(t, apperrors.IsPermissionDenied(err))
	assert.Empty(t, writer.messages)

	err = Deliver(context.Background(), Disabled{}, SystemNotification{UserID: "u1"})
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestKafkaPusherPublishes(t *testing.T) {
	writer := &recordingWriter{}
	pusher := &KafkaPusher{writer: writer, permission: PermissionGranted, logger: quietLogger()}

	err := Deliver(context.Background(), pusher, SystemNotification{UserID: "u1", Title: "Hi", Tag: "n1"})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("u1"), writer.messages[0].Key)

	var decoded SystemNotification
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, "Hi", decoded.Title)
	assert.Equal(t, "n1", decoded.Tag)
}
