package events

import (
	"context"
	"fmt"

	"cargahub/messaging-service/internal/apperrors"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// RecoverableError marks a delivery that may succeed if redelivered.
type RecoverableError struct {
	message string
}

func (e RecoverableError) Error() string {
	return e.message
}

func NewRecoverableError(formatString string, a ...interface{}) RecoverableError {
	return RecoverableError{message: fmt.Sprintf(formatString, a...)}
}

// UnrecoverableError marks a delivery that will never succeed.
type UnrecoverableError struct {
	message string
}

func (e UnrecoverableError) Error() string {
	return e.message
}

func NewUnrecoverableError(formatString string, a ...interface{}) UnrecoverableError {
	return UnrecoverableError{message: fmt.Sprintf(formatString, a...)}
}

// classify maps a handler error onto the two delivery outcomes. Validation
// failures are permanent; anything else is worth another attempt.
func classify(err error) error {
	if apperrors.IsValidation(err) {
		return NewUnrecoverableError("invalid notification event: %s", err.Error())
	}
	return NewRecoverableError("unable to store notification event: %s", err.Error())
}

type AMQPSettings struct {
	URI          string
	ExchangeName string
	ExchangeType string
	QueueName    string
	RoutingKey   string
}

// AMQPSource consumes JSON notification drafts from a RabbitMQ queue bound to
// an exchange.
type AMQPSource struct {
	settings AMQPSettings
	logger   *logrus.Logger
}

func NewAMQPSource(settings AMQPSettings, logger *logrus.Logger) *AMQPSource {
	return &AMQPSource{settings: settings, logger: logger}
}

func (s *AMQPSource) Run(ctx context.Context, handle Handler) error {
	wrapMsg := "unable to consume notification events"

	conn, err := amqp.Dial(s.settings.URI)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(s.settings.ExchangeName, s.settings.ExchangeType, true, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	queue, err := ch.QueueDeclare(s.settings.QueueName, true, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	err = ch.QueueBind(queue.Name, s.settings.RoutingKey, s.settings.ExchangeName, false, nil)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	s.logger.WithFields(logrus.Fields{
		"exchange": s.settings.ExchangeName,
		"queue":    queue.Name,
	}).Info("Consuming notification events")

	return s.consume(ctx, deliveries, handle)
}

func (s *AMQPSource) consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			s.handleDelivery(ctx, delivery, handle)
		}
	}
}

func (s *AMQPSource) handleDelivery(ctx context.Context, delivery amqp.Delivery, handle Handler) {
	log := s.logger.WithField("routing_key", delivery.RoutingKey)

	var err error
	draft, decodeErr := decodeDraft(delivery.Body)
	if decodeErr != nil {
		err = NewUnrecoverableError("%s", decodeErr.Error())
	} else if handleErr := handle(ctx, draft); handleErr != nil {
		err = classify(handleErr)
	}

	switch err.(type) {
	case nil:
		if ackErr := delivery.Ack(false); ackErr != nil {
			log.WithError(ackErr).Error("Unable to acknowledge delivery")
		}
	case RecoverableError:
		log.WithError(err).Warn("Requeueing notification event")
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			log.WithError(nackErr).Error("Unable to requeue delivery")
		}
	default:
		log.WithError(err).Error("Rejecting notification event")
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Error("Unable to reject delivery")
		}
	}
}
