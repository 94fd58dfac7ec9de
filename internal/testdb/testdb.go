// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests using it should carry the integration build tag.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/loyalty-api/internal/ciutil"
	"github.com/phrazzld/loyalty-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// DatabaseURLEnv names the variable holding the test database URL.
const DatabaseURLEnv = "LOYALTY_TEST_DATABASE_URL"

// TestTimeout bounds setup work against the test database.
const TestTimeout = 30 * time.Second

// GetTestDatabaseURL returns the test database URL, or "" when none is set.
func GetTestDatabaseURL() string {
	return os.Getenv(DatabaseURLEnv)
}

// Open connects to the test database and rebuilds its schema from the
// embedded migrations. Without a URL it skips the test, or fails it under CI
// where a database is expected. The database is wiped, so point
// DatabaseURLEnv at a disposable one.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		if ciutil.IsCI() {
			t.Fatalf("%s must be set in CI", DatabaseURLEnv)
		}
		t.Skipf("%s not set", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, nil, "reset"), "failed to reset schema")
	require.NoError(t, postgres.Migrate(ctx, db, nil, "up"), "failed to migrate schema")
	return db
}
