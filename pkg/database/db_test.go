package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "data.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrate twice")

	for _, table := range []string{"users", "prefs", "readings"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("HOME", "/tmp/ziwei-home")
	assert.Equal(t, filepath.Join("/tmp/ziwei-home", ".ziwei", "data.db"), DefaultConfig().Path)
}
