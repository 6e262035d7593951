package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPusher hands system notifications to a downstream push gateway through
// a Kafka topic, keyed by recipient so one user's notifications stay ordered.
type KafkaPusher struct {
	writer     messageWriter
	permission Permission
	logger     *logrus.Logger
}

func NewKafkaPusher(brokers []string, topic string, permission Permission, logger *logrus.Logger) *KafkaPusher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Async:        false,
	}
	return &KafkaPusher{writer: w, permission: permission, logger: logger}
}

func (p *KafkaPusher) Permission(ctx context.Context, userID string) (Permission, error) {
	return p.permission, nil
}

func (p *KafkaPusher) Show(ctx context.Context, n SystemNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "unable to encode system notification")
	}

	msg := kafkago.Message{
		Key:   []byte(n.UserID),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "unable to publish system notification")
	}

	p.logger.WithFields(logrus.Fields{
		"user_id": n.UserID,
		"tag":     n.Tag,
	}).Debug("System notification published")
	return nil
}

func (p *KafkaPusher) Close() error {
	return p.writer.Close()
}
