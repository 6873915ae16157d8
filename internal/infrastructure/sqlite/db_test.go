package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glboard/internal/journal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_CreatesPrivateDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "glboard", "journal.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer db.Close()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}
}

func TestNewDB_InvalidPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := NewDB(filepath.Join(blocker, "nested", "journal.db"))
	require.Error(t, err)
}

func TestNewDB_Pragmas(t *testing.T) {
	db := openTestDB(t)

	var mode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)

	var busy, fk int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&busy))
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.Equal(t, 5000, busy)
	require.Equal(t, 1, fk)
}

func TestNewDB_MigratesToLatestSchema(t *testing.T) {
	db := openTestDB(t)

	var version int
	var dirty bool
	require.NoError(t, db.conn.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty))
	require.Equal(t, 2, version)
	require.False(t, dirty)

	rows, err := db.conn.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'journal'")
	require.NoError(t, err)
	defer rows.Close()
	var indexes []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes = append(indexes, name)
	}
	require.NoError(t, rows.Err())
	require.Subset(t, indexes, []string{"idx_journal_project_created", "idx_journal_project_iid"})
}

func TestNewDB_ReopenKeepsEntriesAndBacksUp(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	db1, err := NewDB(path)
	require.NoError(t, err)
	entry := journal.NewEntry(42, "move", journal.ResultApplied, time.Unix(1000, 0))
	require.NoError(t, db1.JournalRepository().Append(ctx, entry))
	require.NoError(t, db1.Close())

	db2, err := NewDB(path)
	require.NoError(t, err)
	defer db2.Close()

	entries, err := db2.JournalRepository().Recent(ctx, journal.Filter{ProjectID: 42})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, entry.ID, entries[0].ID)

	backup, err := sql.Open("sqlite3", "file:"+filepath.ToSlash(path+".bak"))
	require.NoError(t, err)
	defer backup.Close()
	var n int
	require.NoError(t, backup.QueryRow("SELECT COUNT(*) FROM journal WHERE project_id = 42").Scan(&n))
	require.Equal(t, 1, n)
}

func TestSchema_JournalIDIsUnique(t *testing.T) {
	db := openTestDB(t)

	insert := "INSERT INTO journal (id, project_id, kind, result, created_at) VALUES ('job-1', 1, 'move', 'applied', 1)"
	_, err := db.conn.Exec(insert)
	require.NoError(t, err)
	_, err = db.conn.Exec(insert)
	require.Error(t, err)
}

func TestSchema_IssueOrderKeyedByProject(t *testing.T) {
	db := openTestDB(t)

	var pk int
	require.NoError(t, db.conn.QueryRow(
		"SELECT pk FROM pragma_table_info('issue_order') WHERE name = 'project_id'",
	).Scan(&pk))
	require.Equal(t, 1, pk)

	ctx := context.Background()
	repo := db.JournalRepository()
	require.NoError(t, repo.SaveOrder(ctx, 7, []int{3, 1, 2}))
	require.NoError(t, repo.SaveOrder(ctx, 7, []int{2, 3}))

	var rows int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM issue_order WHERE project_id = 7").Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestDB_CloseClosesConnection(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.Error(t, db.Connection().Ping())
}
