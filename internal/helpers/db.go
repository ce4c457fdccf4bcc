package helpers

import (
	"path"
	"testing"

	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/migrations"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new temporary SQLite database with the full schema applied.
func NewTestDB(t testing.TB, dbName string) *db.DB {
	t.Helper()

	database, err := db.NewSQLiteDB(path.Join(t.TempDir(), dbName))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), database))

	return database
}
