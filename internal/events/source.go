// Package events produces notification drafts for the notification store.
package events

import (
	"context"
	"encoding/json"

	"cargahub/messaging-service/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Handler receives one draft. A returned error is reported to the source,
// which decides whether the draft is retried or dropped.
type Handler func(ctx context.Context, draft models.NotificationDraft) error

// Source delivers drafts to a handler until ctx is cancelled or the source
// fails. Run returns ctx.Err() on cancellation.
type Source interface {
	Run(ctx context.Context, handle Handler) error
}

func decodeDraft(body []byte) (models.NotificationDraft, error) {
	var draft models.NotificationDraft
	if err := json.Unmarshal(body, &draft); err != nil {
		return models.NotificationDraft{}, errors.Wrap(err, "unable to parse notification event")
	}
	return draft, nil
}

// ChannelSource feeds drafts from a Go channel. It stops when the channel is
// closed or ctx is cancelled.
type ChannelSource struct {
	drafts <-chan models.NotificationDraft
	logger *logrus.Logger
}

func NewChannelSource(drafts <-chan models.NotificationDraft, logger *logrus.Logger) *ChannelSource {
	return &ChannelSource{drafts: drafts, logger: logger}
}

func (s *ChannelSource) Run(ctx context.Context, handle Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case draft, ok := <-s.drafts:
			if !ok {
				return nil
			}
			if err := handle(ctx, draft); err != nil {
				s.logger.WithError(err).WithField("type", draft.Type).Warn("Notification event was not stored")
			}
		}
	}
}
