package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"local_storage", "session_storage", "metrics"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_IsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, teardown, err := InitDB(path, "", "")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO local_storage (key, value, updated_at) VALUES ('themeMode', 'dark', 1)")
	require.NoError(t, err)
	teardown()

	db, teardown, err = InitDB(path, "", "")
	require.NoError(t, err, "migrations must be safe to apply twice")
	defer teardown()

	var value string
	require.NoError(t, db.QueryRow("SELECT value FROM local_storage WHERE key='themeMode'").Scan(&value))
	assert.Equal(t, "dark", value)
}

func TestRemoteDSN(t *testing.T) {
	assert.Equal(t, "libsql://db.turso.io", remoteDSN("libsql://db.turso.io", ""))
	assert.Equal(t, "libsql://db.turso.io?authToken=tok", remoteDSN("libsql://db.turso.io", "tok"))
	assert.Equal(t, "libsql://db.turso.io?tls=1&authToken=tok", remoteDSN("libsql://db.turso.io?tls=1", "tok"))
}
