package events

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// KafkaSource consumes JSON notification drafts from a Kafka topic.
type KafkaSource struct {
	reader messageReader
	logger *logrus.Logger
}

func NewKafkaSource(brokers []string, topic, groupID string, logger *logrus.Logger) *KafkaSource {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &KafkaSource{reader: r, logger: logger}
}

func (s *KafkaSource) Run(ctx context.Context, handle Handler) error {
	for {
		m, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WithError(err).Warn("Kafka read error")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		draft, err := decodeDraft(m.Value)
		if err != nil {
			s.logger.WithError(err).WithField("offset", m.Offset).Error("Dropping malformed notification event")
			continue
		}

		if err := handle(ctx, draft); err != nil {
			s.logger.WithError(err).WithField("offset", m.Offset).Warn("Notification event was not stored")
		}
	}
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
