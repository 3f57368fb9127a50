package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/pkg/dbutil"
)

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, "./app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("./app.db"))
	require.Equal(t, "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:x.db?mode=rwc"))
	require.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)",
		sqliteDSN("a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
}

func TestApplyMigrations_SQLite(t *testing.T) {
	conn, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, dbutil.DialectSQLite, dbutil.DialectOf(conn))

	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, conn))
	// second run is a no-op
	require.NoError(t, ApplyMigrations(ctx, conn))

	var fk int
	require.NoError(t, conn.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	require.Equal(t, 1, fk)

	var tables []string
	require.NoError(t, conn.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'todos') ORDER BY name"))
	require.Equal(t, []string{"todos", "users"}, tables)
}
