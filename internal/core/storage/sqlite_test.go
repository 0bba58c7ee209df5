package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLite_Memory(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
}

func TestNewSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)

	assert.NoError(t, db.Ping())
	assert.NoError(t, db.Close())

	// Reopening the same file must work.
	db2, err := NewSQLite(path)
	require.NoError(t, err)
	assert.NoError(t, db2.Ping())
	assert.NoError(t, db2.Close())
}
