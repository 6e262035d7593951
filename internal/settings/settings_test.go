package settings

import (
	"context"
	"database/sql/driver"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customSettings() models.NotificationSettings {
	s := models.DefaultNotificationSettings()
	s.EnableEmail = false
	s.EnableSMS = true
	s.Types.Payments = false
	s.Types.Ratings = false
	s.QuietHours = models.QuietHours{Enabled: true, Start: "23:30", End: "06:15"}
	return s
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Validate(models.DefaultNotificationSettings()))

	bad := models.DefaultNotificationSettings()
	bad.QuietHours.Start = "9:00"
	assert.True(apperrors.IsValidation(Validate(bad)), "hours must be zero padded")

	bad = models.DefaultNotificationSettings()
	bad.QuietHours.End = "24:00"
	assert.True(apperrors.IsValidation(Validate(bad)))
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	loaded, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings(), loaded, "missing keys load as defaults")

	require.NoError(t, repo.Save(ctx, "u1", customSettings()))
	loaded, err = repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, customSettings(), loaded)

	other, err := repo.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings(), other)
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	bad := models.DefaultNotificationSettings()
	bad.QuietHours.Start = "late"

	err := NewMemoryRepository().Save(context.Background(), "u1", bad)
	assert.True(t, apperrors.IsValidation(err))
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "settings")

	repo, err := NewFileRepository(dir)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings(), loaded)

	require.NoError(t, repo.Save(ctx, "u1", customSettings()))
	require.NoError(t, repo.Save(ctx, "u1", customSettings()), "overwriting is allowed")

	// A fresh repository over the same directory sees the saved document.
	reopened, err := NewFileRepository(dir)
	require.NoError(t, err)
	loaded, err = reopened.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, customSettings(), loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestDecodeFillsMissingFieldsWithDefaults(t *testing.T) {
	s, err := decode([]byte(`{"enablePush": false}`))
	require.NoError(t, err)
	assert.False(t, s.EnablePush)
	assert.True(t, s.Types.Messages)
	assert.Equal(t, "22:00", s.QuietHours.Start)
}

// capturedValue is a sqlmock argument matcher that remembers what it matched.
type capturedValue struct {
	value []byte
}

func (c *capturedValue) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if ok {
		c.value = b
	}
	return ok
}

func TestPostgresRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "unable to open the mock database connection")
	defer db.Close()

	captured := &capturedValue{}
	mock.ExpectExec("INSERT INTO notification_settings_kv \\(key,value\\) VALUES \\(\\$1,\\$2\\) ON CONFLICT \\(key\\)").
		WithArgs("notification_settings:u1", captured).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Save(ctx, "u1", customSettings()))
	require.NotEmpty(t, captured.value)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM notification_settings_kv WHERE key = $1")).
		WithArgs("notification_settings:u1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(captured.value))

	loaded, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(customSettings(), loaded)

	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestPostgresLoadMissingKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM notification_settings_kv WHERE key = $1")).
		WithArgs("notification_settings:nobody").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	loaded, err := NewPostgresRepository(db).Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings(), loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInitializeTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS notification_settings_kv").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewPostgresRepository(db).InitializeTables())
	assert.NoError(t, mock.ExpectationsWereMet())
}
