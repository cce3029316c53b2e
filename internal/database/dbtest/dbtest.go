// Package dbtest opens throwaway migrated databases for repository tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
)

// Open returns a migrated SQLite database that is closed when the test ends.
func Open(t testing.TB) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// OpenGorm is Open for tests that only need the gorm handle.
func OpenGorm(t testing.TB) *gorm.DB {
	t.Helper()
	return Open(t).DB
}
