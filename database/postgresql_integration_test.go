//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-datamap/database"
	"github.com/gaborage/go-datamap/logger"
	testconsts "github.com/gaborage/go-datamap/testing"
	"github.com/gaborage/go-datamap/testing/containers"
)

var postgresDDL = []string{
	`CREATE TABLE persons (
		id BIGSERIAL PRIMARY KEY,
		email TEXT,
		first_name TEXT,
		last_name TEXT,
		archive BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE users (
		id BIGSERIAL PRIMARY KEY,
		person_id BIGINT NOT NULL,
		name TEXT
	)`,
}

func TestPostgreSQLRoundTrip(t *testing.T) {
	ctx := context.Background()
	pg := containers.StartPostgreSQL(ctx, t, nil)

	db, err := database.Open(pg.Config(), logger.New(testconsts.TestLoggerLevelError, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.Equal(t, database.PostgreSQL, db.Vendor())

	for _, stmt := range postgresDDL {
		_, err = db.Querier().Exec(ctx, stmt)
		require.NoError(t, err)
	}

	id, err := db.Table(persons).Insert(ctx, map[string]any{
		"email":      testconsts.TestEmailPerson,
		"first_name": testconsts.TestFirstName,
		"last_name":  testconsts.TestLastName,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	affected, err := db.Table(persons).UpdateByPK(ctx, id, map[string]any{"email": testconsts.TestEmailUpdated})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	row, err := db.Table(persons).GetByPK(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":         int64(1),
		"email":      testconsts.TestEmailUpdated,
		"first_name": testconsts.TestFirstName,
		"last_name":  testconsts.TestLastName,
		"archive":    int64(0),
	}, row.Map())

	_, err = db.Table(users).Insert(ctx, map[string]any{"person_id": id, "name": testconsts.TestNameAlice})
	require.NoError(t, err)

	rows, err := db.Query(users, persons).
		Select(users.C("name"), persons.C("email")).
		InnerJoin(persons, database.On(persons.C("id"), users.C("person_id"))).
		Where(database.Like(persons.C("email"), "%waifu%")).
		OrderBy(database.Asc(users.C("id"))).
		Limit(10).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{
		"users.name":    testconsts.TestNameAlice,
		"persons.email": testconsts.TestEmailUpdated,
	}, rows[0].Map())

	deleted, err := db.Table(persons).DeleteByPK(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = db.Table(persons).GetByPK(ctx, id)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestPostgreSQLTransactionRollback(t *testing.T) {
	ctx := context.Background()
	pg := containers.StartPostgreSQL(ctx, t, nil)

	db, err := database.Open(pg.Config(), logger.New(testconsts.TestLoggerLevelError, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, pg.Exec(ctx, postgresDDL[0]))

	conn, ok := db.Querier().(database.Interface)
	require.True(t, ok)
	tx, err := conn.Begin(ctx)
	require.NoError(t, err)

	_, err = database.New(tx).Table(persons).Insert(ctx, map[string]any{"email": testconsts.TestEmailBob})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	rows, err := db.Table(persons).Find(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
