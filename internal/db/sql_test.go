package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "file:app.db?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("file:app.db?cache=shared"))
	assert.Equal(t, "app.db?_pragma=foreign_keys(0)", sqliteDSN("app.db?_pragma=foreign_keys(0)"))
}

func TestConnectSQLiteEnforcesForeignKeys(t *testing.T) {
	conn, err := ConnectSQL("sqlite", ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	var on int
	require.NoError(t, conn.Get(&on, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, on)

	conn.MustExec(`CREATE TABLE owners (id INTEGER PRIMARY KEY)`)
	conn.MustExec(`CREATE TABLE pets (id INTEGER PRIMARY KEY, owner_id INTEGER NOT NULL REFERENCES owners(id))`)
	_, err = conn.Exec(`INSERT INTO pets (id, owner_id) VALUES (1, 99)`)
	assert.Error(t, err)
}

func TestConnectSQLUnsupportedDriver(t *testing.T) {
	_, err := ConnectSQL("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported")
}
