package sqlconn

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/types"
)

func TestConnectionBasicMethods(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	c := New(db, types.PostgreSQL, nil)
	ctx := context.Background()

	mock.ExpectPing()
	require.NoError(t, c.Health(ctx))

	mock.ExpectExec("INSERT INTO items").WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	_, err = c.Exec(ctx, "INSERT INTO items(name) VALUES($1)", "a")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name FROM items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "x"))
	rows, err := c.Query(ctx, "SELECT id, name FROM items")
	require.NoError(t, err)
	assert.True(t, rows.Next())
	require.NoError(t, rows.Close())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM items").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	tx, err := c.Begin(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.PostgreSQL, tx.DatabaseType())
	_, err = tx.Exec(ctx, "DELETE FROM items WHERE id=$1", 1)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err = c.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Contains(t, stats, "max_open_connections")
	assert.Contains(t, stats, "wait_duration")

	assert.Equal(t, types.PostgreSQL, c.DatabaseType())
	assert.Same(t, db, c.DB())

	mock.ExpectClose()
	require.NoError(t, c.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurePool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		mock.ExpectClose()
		_ = db.Close()
	}()

	ConfigurePool(db, &config.DatabaseConfig{
		Pool: config.PoolConfig{
			Max:      config.PoolMaxConfig{Connections: 7},
			Idle:     config.PoolIdleConfig{Connections: 2, Time: time.Minute},
			Lifetime: config.LifetimeConfig{Max: time.Hour},
		},
	})

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
