package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ikrrevents/eventsite/internal/database"
	"github.com/ikrrevents/eventsite/internal/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seedUser(t *testing.T, db *sqlx.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserRepo(db).UpsertOAuth(context.Background(), email, "Test "+email, model.RoleCustomer)
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }
