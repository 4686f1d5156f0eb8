package fixtures

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-datamap/testing/mocks"
)

// NewHealthyDatabase creates a mock database of the given vendor that
// responds positively to health checks and stats.
func NewHealthyDatabase(vendor string) *mocks.MockDatabase {
	mockDB := &mocks.MockDatabase{}

	mockDB.ExpectHealthCheck(true)
	mockDB.ExpectDatabaseType(vendor)
	mockDB.ExpectStats(map[string]any{
		"open_connections": 1,
		"in_use":           0,
		"idle":             1,
	}, nil)

	return mockDB
}

// NewFailingDatabase creates a mock database whose health check and
// statements fail with err (sql.ErrConnDone when nil).
func NewFailingDatabase(vendor string, err error) *mocks.MockDatabase {
	if err == nil {
		err = sql.ErrConnDone
	}

	mockDB := &mocks.MockDatabase{}
	mockDB.ExpectHealthCheck(false)
	mockDB.ExpectDatabaseType(vendor)
	mockDB.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, err)
	mockDB.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(nil, err)
	mockDB.On("Begin", mock.Anything).Return(nil, err)

	return mockDB
}

// NewReadOnlyDatabase creates a mock database on which every Exec and Begin
// fails. Queries must be set up by the test.
func NewReadOnlyDatabase(vendor string) *mocks.MockDatabase {
	mockDB := NewHealthyDatabase(vendor)

	readOnlyErr := errors.New("database is read-only")
	mockDB.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(nil, readOnlyErr)
	mockDB.On("Begin", mock.Anything).Return(nil, readOnlyErr)

	return mockDB
}

// NewMockRows creates sql.Rows with the provided columns and data, for
// returning from a mocked Query.
//
// Example:
//
//	rows := fixtures.NewMockRows(
//	  []string{"id", "email"},
//	  [][]any{
//	    {1, "alice@example.com"},
//	    {2, "bob@example.com"},
//	  },
//	)
func NewMockRows(columns []string, rows [][]any) *sql.Rows {
	db, sqlMock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}
	defer db.Close()

	sqlRows := sqlmock.NewRows(columns)
	for _, row := range rows {
		driverValues := make([]driver.Value, len(row))
		for i, val := range row {
			driverValues[i] = val
		}
		sqlRows.AddRow(driverValues...)
	}
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlRows)

	result, err := db.QueryContext(context.Background(), "SELECT")
	if err != nil {
		panic(err)
	}
	return result
}

// NewMockResult creates sql.Result for mocked Exec calls.
//
//	result := fixtures.NewMockResult(1, 5) // lastInsertId=1, rowsAffected=5
func NewMockResult(lastInsertID, rowsAffected int64) sql.Result {
	return &mockResult{
		lastInsertID: lastInsertID,
		rowsAffected: rowsAffected,
	}
}

// NewErrorResult creates sql.Result whose methods fail with err.
func NewErrorResult(err error) sql.Result {
	return &mockResult{err: err}
}

type mockResult struct {
	lastInsertID int64
	rowsAffected int64
	err          error
}

func (r *mockResult) LastInsertId() (int64, error) {
	return r.lastInsertID, r.err
}

func (r *mockResult) RowsAffected() (int64, error) {
	return r.rowsAffected, r.err
}

// NewSuccessfulTransaction creates a mock transaction that commits and
// whose Exec calls affect one row.
func NewSuccessfulTransaction(vendor string) *mocks.MockTx {
	mockTx := &mocks.MockTx{}
	mockTx.ExpectDatabaseType(vendor)
	mockTx.ExpectSuccessfulTransaction()
	mockTx.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(NewMockResult(1, 1), nil)

	return mockTx
}

// NewFailedTransaction creates a mock transaction that fails on commit and
// accepts a rollback.
func NewFailedTransaction(vendor string, commitErr error) *mocks.MockTx {
	if commitErr == nil {
		commitErr = errors.New("transaction commit failed")
	}

	mockTx := &mocks.MockTx{}
	mockTx.ExpectDatabaseType(vendor)
	mockTx.ExpectFailedTransaction(commitErr)
	mockTx.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(NewMockResult(1, 1), nil)

	return mockTx
}
