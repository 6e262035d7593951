package events

import (
	"context"
	"math/rand"
	"time"

	"cargahub/messaging-service/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultTemplates are the drafts the simulator picks from.
var DefaultTemplates = []models.NotificationDraft{
	{Type: models.NotificationProposal, Title: "New proposal", Message: "A carrier sent a proposal for your cargo", Priority: models.PriorityHigh},
	{Type: models.NotificationMessage, Title: "New message", Message: "You have a new chat message", Priority: models.PriorityMedium},
	{Type: models.NotificationDelivery, Title: "Delivery update", Message: "Your cargo left the pickup address", Priority: models.PriorityMedium},
	{Type: models.NotificationPayment, Title: "Payment received", Message: "The freight payment was confirmed", Priority: models.PriorityHigh},
	{Type: models.NotificationRating, Title: "New rating", Message: "You received a new rating", Priority: models.PriorityLow},
	{Type: models.NotificationAlert, Title: "Route alert", Message: "Heavy traffic reported on your route", Priority: models.PriorityUrgent},
	{Type: models.NotificationSystem, Title: "Scheduled maintenance", Message: "The platform will be briefly unavailable tonight", Priority: models.PriorityLow},
}

// Simulator emits a random template for one user on every tick. It is meant
// for demos and local development; it stops as soon as ctx is cancelled.
type Simulator struct {
	logger    *logrus.Logger
	UserID    string
	Interval  time.Duration
	Rand      *rand.Rand
	Templates []models.NotificationDraft
}

// NewSimulator rejects a non-positive interval.
func NewSimulator(userID string, interval time.Duration, seed int64, logger *logrus.Logger) (*Simulator, error) {
	if interval <= 0 {
		return nil, errors.Errorf("simulator interval must be positive, got %s", interval)
	}
	return &Simulator{
		logger:    logger,
		UserID:    userID,
		Interval:  interval,
		Rand:      rand.New(rand.NewSource(seed)),
		Templates: DefaultTemplates,
	}, nil
}

func (s *Simulator) Run(ctx context.Context, handle Handler) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			draft := s.Next()
			if err := handle(ctx, draft); err != nil {
				s.logger.WithError(err).WithField("type", draft.Type).Warn("Simulated notification was not stored")
			}
		}
	}
}

// Next returns the next simulated draft.
func (s *Simulator) Next() models.NotificationDraft {
	draft := s.Templates[s.Rand.Intn(len(s.Templates))]
	draft.UserID = s.UserID
	return draft
}
