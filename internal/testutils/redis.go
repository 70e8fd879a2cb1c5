// Package testutils provides shared helpers for tests: in-memory Redis and
// SQLite backends plus encounter fixtures.
package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-tracker/internal/redis"
	"github.com/KirkDiggler/rpg-tracker/internal/sqldb"
)

// CreateTestRedisClient creates an in-memory Redis client for testing
func CreateTestRedisClient(t *testing.T) (redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// CreateTestSQLiteDB opens a fresh SQLite file in a temp dir. The schema is
// left to the caller.
func CreateTestSQLiteDB(t *testing.T) *sqldb.DB {
	t.Helper()

	db, err := sqldb.Open(context.Background(), sqldb.Config{
		Dialect: sqldb.DialectSQLite,
		DSN:     filepath.Join(t.TempDir(), "encounters.db"),
	})
	require.NoError(t, err, "failed to open sqlite")
	t.Cleanup(func() { _ = db.Close() })

	return db
}
