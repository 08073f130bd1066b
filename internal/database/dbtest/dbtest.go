// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/config"
	"github.com/mrlokans/hymnal/internal/database"
)

// New returns a migrated SQLite database stored under t.TempDir().
func New(t testing.TB) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
