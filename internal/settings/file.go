package settings

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"cargahub/messaging-service/internal/models"

	"github.com/pkg/errors"
)

type fileRepository struct {
	dir string
}

// NewFileRepository stores one JSON file per key under dir.
func NewFileRepository(dir string) (Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create settings directory %s", dir)
	}
	return &fileRepository{dir: dir}, nil
}

func (r *fileRepository) path(userID string) string {
	return filepath.Join(r.dir, url.PathEscape(Key(userID))+".json")
}

func (r *fileRepository) Load(ctx context.Context, userID string) (models.NotificationSettings, error) {
	data, err := os.ReadFile(r.path(userID))
	if os.IsNotExist(err) {
		return models.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return models.NotificationSettings{}, errors.Wrapf(err, "unable to read settings for %s", userID)
	}
	return decode(data)
}

// Save writes to a temporary file and renames it over the target so readers
// never observe a partially written document.
func (r *fileRepository) Save(ctx context.Context, userID string, s models.NotificationSettings) error {
	wrapMsg := "unable to save settings for " + userID

	data, err := encode(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, ".settings-*")
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, wrapMsg)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if err := os.Rename(tmp.Name(), r.path(userID)); err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}
