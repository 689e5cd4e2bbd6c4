package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed even with nested non-existent directories")
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	// Windows doesn't support Unix permissions
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestNewDB_CreatesDatabaseFile(t *testing.T) {
	db := newTestDB(t)

	info, err := os.Stat(db.Path())
	require.NoError(t, err, "database file should exist after NewDB")
	require.False(t, info.IsDir())
}

func TestNewDB_RunsMigrations(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"models", "model_features"} {
		var name string
		err := db.conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "%s table should exist after migrations", table)
		require.Equal(t, table, name)
	}
}

// A second open copies the existing file to a .bak before migrating.
func TestNewDB_PreMigrationBackup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	_, err = db1.conn.Exec(
		"INSERT INTO models (name, format, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		"car", "yaml", []byte("name: car\n"), 1000, 1000,
	)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	_, err = os.Stat(dbPath + ".bak")
	require.ErrorIs(t, err, os.ErrNotExist, "first open has nothing to back up")

	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err, "backup file should exist after second NewDB")
	require.False(t, info.IsDir())
	require.Greater(t, info.Size(), int64(0))
}

func TestNewDB_Pragmas(t *testing.T) {
	db := newTestDB(t)

	var journalMode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

func TestDB_Close(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.Error(t, db.conn.Ping(), "Ping should fail after Close")
}

func TestDB_Connection(t *testing.T) {
	db := newTestDB(t)

	conn := db.Connection()
	require.IsType(t, (*sql.DB)(nil), conn)
	require.NoError(t, conn.Ping())
	require.NotNil(t, db.ModelRepository())
}

func TestNewDB_MultipleCalls(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db1.Close()

	db2, err := NewDB(dbPath)
	require.NoError(t, err, "WAL mode allows a second connection")
	defer db2.Close()

	var count1, count2 int
	require.NoError(t, db1.conn.QueryRow("SELECT COUNT(*) FROM models").Scan(&count1))
	require.NoError(t, db2.conn.QueryRow("SELECT COUNT(*) FROM models").Scan(&count2))
	require.Equal(t, count1, count2)
}

func TestNewDB_InvalidPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix-specific restricted path test")
	}
	if os.Geteuid() == 0 {
		t.Skip("root can write anywhere")
	}

	_, err := NewDB("/root/featmodel-test-db.sqlite")
	require.Error(t, err)
}
