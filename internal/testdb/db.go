package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/career-coach/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// URLEnvVar names the environment variable holding the test database URL.
const URLEnvVar = "COACH_TEST_DB_URL"

// TestTimeout bounds connection setup and migration.
const TestTimeout = 30 * time.Second

var migrateOnce sync.Once

// GetTestDatabaseURL returns the integration database URL, or "" when unset.
func GetTestDatabaseURL() string {
	return os.Getenv(URLEnvVar)
}

// GetTestDBWithT returns a migrated database connection that is closed when
// the test finishes. It skips the test when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip(URLEnvVar + " not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL, postgres.PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	require.NoError(t, err, "Failed to open database connection")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	var migrateErr error
	migrateOnce.Do(func() {
		provider, err := postgres.NewMigrationProvider(db)
		if err != nil {
			migrateErr = err
			return
		}
		_, migrateErr = provider.Up(ctx)
	})
	require.NoError(t, migrateErr, "Failed to apply migrations")

	return db
}

// WithTx runs fn in a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
