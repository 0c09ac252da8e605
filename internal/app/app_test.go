package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikrrevents/eventsite/internal/config"
	"github.com/ikrrevents/eventsite/internal/database"
	"github.com/ikrrevents/eventsite/internal/notify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewNotifierWithoutKey(t *testing.T) {
	n := NewNotifier(config.Config{OperatorEmail: "ops@example.com", MailFrom: "noreply@example.com"}, quietLogger())
	res := n.Send(context.Background(), notify.KindQuery, "meera@example.com", "Meera",
		notify.QueryDetails{ID: "q-1", Message: "hello"})
	assert.False(t, res.Success)
	assert.Equal(t, notify.ErrNotConfigured.Error(), res.Error)
}

func TestMigrateCommand(t *testing.T) {
	cfg := config.Config{
		DBDriver:    database.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "app.db"),
	}
	require.NoError(t, Migrate(context.Background(), cfg, quietLogger()))
	// Applying twice is harmless.
	require.NoError(t, Migrate(context.Background(), cfg, quietLogger()))
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	err := Migrate(context.Background(), config.Config{DBDriver: "oracle", DatabaseURL: "x"}, quietLogger())
	require.Error(t, err)
}

func TestWorkRequiresBroker(t *testing.T) {
	err := Work(context.Background(), config.Config{LogDir: t.TempDir()}, quietLogger())
	require.Error(t, err)
}

func TestServeRequiresSecret(t *testing.T) {
	cfg := config.Config{
		DBDriver:    database.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "app.db"),
	}
	err := Serve(context.Background(), cfg, quietLogger())
	require.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestMigrateWithoutSecret(t *testing.T) {
	cfg := config.Config{
		DBDriver:    database.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "app.db"),
	}
	require.Empty(t, cfg.JWTSecret)
	require.NoError(t, Migrate(context.Background(), cfg, quietLogger()))
}
