package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/logger"
	testconsts "github.com/gaborage/go-datamap/testing"
)

const errUnsupportedDatabaseType = "unsupported database type"

func newTestLogger() logger.Logger {
	return logger.New(testconsts.TestLoggerLevelError, false)
}

func TestValidateDatabaseTypeSuccess(t *testing.T) {
	for _, dbType := range []string{PostgreSQL, Oracle, MySQL, SQLite} {
		t.Run(dbType, func(t *testing.T) {
			assert.NoError(t, ValidateDatabaseType(dbType))
		})
	}
}

func TestValidateDatabaseTypeFailure(t *testing.T) {
	tests := []struct {
		name          string
		dbType        string
		expectedError string
	}{
		{
			name:          "unsupported_mongodb",
			dbType:        "mongodb",
			expectedError: errUnsupportedDatabaseType + ": mongodb",
		},
		{
			name:          "empty_string",
			dbType:        "",
			expectedError: errUnsupportedDatabaseType + ":",
		},
		{
			name:          "case_sensitive",
			dbType:        "PostgreSQL",
			expectedError: errUnsupportedDatabaseType + ": PostgreSQL",
		},
		{
			name:          "driver_name_alias",
			dbType:        "sqlite3",
			expectedError: errUnsupportedDatabaseType + ": sqlite3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseType(tt.dbType)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestGetSupportedDatabaseTypes(t *testing.T) {
	supported := GetSupportedDatabaseTypes()
	assert.Equal(t, []string{"postgresql", "oracle", "mysql", "sqlite"}, supported)

	supported[0] = "changed"
	assert.Equal(t, PostgreSQL, GetSupportedDatabaseTypes()[0])
}

func TestNewConnectionRejectsBadConfig(t *testing.T) {
	_, err := NewConnection(nil, newTestLogger())
	assert.Error(t, err)

	_, err = NewConnection(&config.DatabaseConfig{Type: "db2"}, newTestLogger())
	assert.ErrorContains(t, err, errUnsupportedDatabaseType)

	_, err = NewConnection(&config.DatabaseConfig{Type: SQLite}, newTestLogger())
	assert.ErrorContains(t, err, "no database path configured")
}

func TestNewConnectionReturnsTrackedConnection(t *testing.T) {
	conn, err := NewConnection(&config.DatabaseConfig{Type: SQLite, Database: ":memory:"}, nil)
	require.NoError(t, err)
	defer conn.Close()

	tracked, ok := conn.(*TrackedConnection)
	require.True(t, ok, "expected *TrackedConnection, got %T", conn)
	assert.Equal(t, SQLite, tracked.DatabaseType())
	assert.NoError(t, conn.Health(context.Background()))

	stats, err := conn.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["max_open_connections"])
}

func TestOpenRunsQueries(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{Type: SQLite, Database: ":memory:"}, newTestLogger())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.Querier().Exec(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	tx, err := db.Querier().(Interface).Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO t (name) VALUES (?)", "a")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	rows, err := db.Querier().Query(ctx, "SELECT name FROM t")
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	assert.Equal(t, "a", name)
}
