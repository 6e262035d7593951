// Package settings persists per-user notification settings in a key-value
// surface. Values are JSON documents; a missing key loads as the defaults.
package settings

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	"github.com/pkg/errors"
)

// Repository is the load/save pair used by the notification service.
type Repository interface {
	Load(ctx context.Context, userID string) (models.NotificationSettings, error)
	Save(ctx context.Context, userID string, s models.NotificationSettings) error
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate checks that the quiet hours bounds are zero-padded HH:MM strings.
func Validate(s models.NotificationSettings) error {
	if !clockPattern.MatchString(s.QuietHours.Start) {
		return apperrors.Validation("quiet hours start %q is not a HH:MM time", s.QuietHours.Start)
	}
	if !clockPattern.MatchString(s.QuietHours.End) {
		return apperrors.Validation("quiet hours end %q is not a HH:MM time", s.QuietHours.End)
	}
	return nil
}

// Key returns the storage key for a user's settings.
func Key(userID string) string {
	return "notification_settings:" + userID
}

func encode(s models.NotificationSettings) ([]byte, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode notification settings")
	}
	return data, nil
}

// decode overlays the stored document on the defaults so documents written
// before a field existed still load with a sensible value for it.
func decode(data []byte) (models.NotificationSettings, error) {
	s := models.DefaultNotificationSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return models.NotificationSettings{}, errors.Wrap(err, "unable to decode notification settings")
	}
	return s, nil
}

type memoryRepository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryRepository returns a Repository that lives only as long as the process.
func NewMemoryRepository() Repository {
	return &memoryRepository{values: make(map[string][]byte)}
}

func (r *memoryRepository) Load(ctx context.Context, userID string) (models.NotificationSettings, error) {
	r.mu.RLock()
	data, ok := r.values[Key(userID)]
	r.mu.RUnlock()

	if !ok {
		return models.DefaultNotificationSettings(), nil
	}
	return decode(data)
}

func (r *memoryRepository) Save(ctx context.Context, userID string, s models.NotificationSettings) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.values[Key(userID)] = data
	r.mu.Unlock()
	return nil
}
