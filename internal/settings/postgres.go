package settings

import (
	"context"
	"database/sql"

	"cargahub/messaging-service/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

const settingsTable = "notification_settings_kv"

// PostgresRepository keeps settings in the notification_settings_kv table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository stores settings in a single key/value table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InitializeTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS notification_settings_kv (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`

	_, err := r.db.Exec(query)
	return errors.Wrap(err, "unable to initialize the settings table")
}

func (r *PostgresRepository) Load(ctx context.Context, userID string) (models.NotificationSettings, error) {
	wrapMsg := "unable to load notification settings"

	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("value").
		From(settingsTable).
		Where(sq.Eq{"key": Key(userID)}).
		ToSql()
	if err != nil {
		return models.NotificationSettings{}, errors.Wrap(err, wrapMsg)
	}

	var data []byte
	err = r.db.QueryRowContext(ctx, statement, args...).Scan(&data)
	if err == sql.ErrNoRows {
		return models.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return models.NotificationSettings{}, errors.Wrap(err, wrapMsg)
	}

	return decode(data)
}

func (r *PostgresRepository) Save(ctx context.Context, userID string, s models.NotificationSettings) error {
	wrapMsg := "unable to save notification settings"

	data, err := encode(s)
	if err != nil {
		return err
	}

	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(settingsTable).
		Columns("key", "value").
		Values(Key(userID), data).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	if _, err := r.db.ExecContext(ctx, statement, args...); err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}
