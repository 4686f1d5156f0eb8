package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-datamap/database/internal/sqlconn"
	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

const (
	selectPersons = "SELECT id, email FROM persons WHERE id = $1"
	insertPerson  = "INSERT INTO persons (email) VALUES ($1) RETURNING id"
	deletePersons = "DELETE FROM persons WHERE archive = $1"
)

func newMockBridge(t *testing.T, vendor string) (*Bridge, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(sqlconn.New(db, vendor, nil)), mock
}

func personColumns() []types.OutputColumn {
	id := schema.Int("id", schema.PrimaryKey())
	email := schema.String("email")
	return []types.OutputColumn{
		{Key: "id", Ref: "persons.id", Field: &id},
		{Key: "email", Ref: "persons.email", Field: &email},
	}
}

func TestRunRowsConvertsDriverValues(t *testing.T) {
	b, mock := newMockBridge(t, types.PostgreSQL)
	mock.ExpectQuery(selectPersons).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("1", []byte("fake@mail.com")))

	res, err := b.Run(context.Background(), types.Statement{
		SQL:     selectPersons,
		Args:    []any{int64(1)},
		Expect:  types.ExpectRows,
		Columns: personColumns(),
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, map[string]any{"id": int64(1), "email": "fake@mail.com"}, res.Rows[0].Map())
}

func TestRunRowsWithoutColumnsKeepsDriverNames(t *testing.T) {
	b, mock := newMockBridge(t, types.SQLite)
	mock.ExpectQuery("SELECT 1 AS one, NULL AS nothing").
		WillReturnRows(sqlmock.NewRows([]string{"one", "nothing"}).AddRow([]byte("1"), nil))

	res, err := b.Run(context.Background(), types.Statement{SQL: "SELECT 1 AS one, NULL AS nothing"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"one", "nothing"}, res.Rows[0].Columns())
	assert.Equal(t, []any{"1", nil}, res.Rows[0].Values())
}

func TestRunRowsColumnCountMismatch(t *testing.T) {
	b, mock := newMockBridge(t, types.PostgreSQL)
	mock.ExpectQuery(selectPersons).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := b.Run(context.Background(), types.Statement{
		SQL:     selectPersons,
		Args:    []any{int64(1)},
		Columns: personColumns(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrExecution)
	assert.Contains(t, err.Error(), "expected 2 columns, driver returned 1")
}

func TestRunRowsConversionFailure(t *testing.T) {
	b, mock := newMockBridge(t, types.PostgreSQL)
	mock.ExpectQuery(selectPersons).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("not-a-number", "x"))

	_, err := b.Run(context.Background(), types.Statement{
		SQL:     selectPersons,
		Args:    []any{int64(1)},
		Columns: personColumns(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrExecution)
	assert.Contains(t, err.Error(), `column "id"`)
}

func TestRunRowCount(t *testing.T) {
	b, mock := newMockBridge(t, types.PostgreSQL)
	mock.ExpectExec(deletePersons).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := b.Run(context.Background(), types.Statement{
		SQL:    deletePersons,
		Args:   []any{int64(1)},
		Expect: types.ExpectRowCount,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Affected)
	assert.Nil(t, res.LastID)
}

func TestRunLastID(t *testing.T) {
	id := schema.Int("id", schema.PrimaryKey())

	t.Run("returning", func(t *testing.T) {
		b, mock := newMockBridge(t, types.PostgreSQL)
		mock.ExpectQuery(insertPerson).
			WithArgs("fake@mail.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("42"))

		res, err := b.Run(context.Background(), types.Statement{
			SQL:       insertPerson,
			Args:      []any{"fake@mail.com"},
			Expect:    types.ExpectLastID,
			Key:       &id,
			Returning: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(42), res.LastID)
		assert.Equal(t, int64(1), res.Affected)
	})

	t.Run("returning_no_row", func(t *testing.T) {
		b, mock := newMockBridge(t, types.PostgreSQL)
		mock.ExpectQuery(insertPerson).
			WithArgs("fake@mail.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := b.Run(context.Background(), types.Statement{
			SQL:       insertPerson,
			Args:      []any{"fake@mail.com"},
			Expect:    types.ExpectLastID,
			Key:       &id,
			Returning: true,
		})
		assert.ErrorIs(t, err, types.ErrExecution)
	})

	t.Run("last_insert_id", func(t *testing.T) {
		const insert = "INSERT INTO persons (email) VALUES (?)"
		b, mock := newMockBridge(t, types.MySQL)
		mock.ExpectExec(insert).
			WithArgs("fake@mail.com").
			WillReturnResult(sqlmock.NewResult(12, 1))

		res, err := b.Run(context.Background(), types.Statement{
			SQL:    insert,
			Args:   []any{"fake@mail.com"},
			Expect: types.ExpectLastID,
			Key:    &id,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), res.LastID)
		assert.Equal(t, int64(1), res.Affected)
	})

	t.Run("output_bind", func(t *testing.T) {
		const insert = "INSERT INTO persons (email) VALUES (:1) RETURNING id INTO :2"
		var out int64 = 99
		b, mock := newMockBridge(t, types.Oracle)
		mock.ExpectExec(insert).
			WithArgs("fake@mail.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		res, err := b.Run(context.Background(), types.Statement{
			SQL:    insert,
			Args:   []any{"fake@mail.com"},
			Expect: types.ExpectLastID,
			Key:    &id,
			KeyOut: &out,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(99), res.LastID)
	})
}

func TestRunWrapsDriverErrors(t *testing.T) {
	boom := errors.New("connection reset")
	b, mock := newMockBridge(t, types.PostgreSQL)
	mock.ExpectExec(deletePersons).WithArgs(int64(1)).WillReturnError(boom)

	_, err := b.Run(context.Background(), types.Statement{
		SQL:    deletePersons,
		Args:   []any{int64(1)},
		Expect: types.ExpectRowCount,
	})
	require.Error(t, err)

	var execErr *types.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, deletePersons, execErr.SQL)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, types.ErrExecution)
}

func TestRunWithoutConnection(t *testing.T) {
	_, err := New(nil).Run(context.Background(), types.Statement{SQL: selectPersons})
	assert.ErrorIs(t, err, types.ErrExecution)
}

func TestRunUnsupportedExpectation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(sqlconn.New(db, types.SQLite, nil)).Run(context.Background(), types.Statement{
		SQL:    "SELECT 1",
		Expect: types.Expect(9),
	})
	assert.ErrorIs(t, err, types.ErrExecution)
	assert.Contains(t, err.Error(), "Expect(9)")
}

func TestConvertUntypedBytes(t *testing.T) {
	v, err := convert(types.OutputColumn{Key: "name"}, []byte("matthew"))
	require.NoError(t, err)
	assert.Equal(t, "matthew", v)

	v, err = convert(types.OutputColumn{Key: "total", Type: schema.TypeInt}, []byte("3"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = convert(types.OutputColumn{Key: "total", Type: schema.TypeInt}, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
