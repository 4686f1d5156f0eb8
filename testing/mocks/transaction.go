package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-datamap/database/types"
)

// MockTx is a testify mock of types.Tx.
//
// Example usage:
//
//	mockTx := &mocks.MockTx{}
//	mockTx.ExpectDatabaseType(types.SQLite)
//	mockTx.ExpectExec("UPDATE persons SET email = ? WHERE id = ?", fixtures.NewMockResult(0, 1), nil)
//	mockTx.ExpectSuccessfulTransaction()
type MockTx struct {
	mock.Mock
}

var _ types.Tx = (*MockTx)(nil)

// Query implements types.Tx
func (m *MockTx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	arguments := m.Called(ctx, query, args)
	rows, _ := arguments.Get(0).(*sql.Rows)
	return rows, arguments.Error(1)
}

// Exec implements types.Tx
func (m *MockTx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	arguments := m.Called(ctx, query, args)
	result, _ := arguments.Get(0).(sql.Result)
	return result, arguments.Error(1)
}

// Commit implements types.Tx
func (m *MockTx) Commit() error {
	return m.Called().Error(0)
}

// Rollback implements types.Tx
func (m *MockTx) Rollback() error {
	return m.Called().Error(0)
}

// DatabaseType implements types.Tx
func (m *MockTx) DatabaseType() string {
	return m.Called().String(0)
}

// ExpectQuery sets up a query expectation with the provided rows and error
func (m *MockTx) ExpectQuery(query string, rows *sql.Rows, err error) *mock.Call {
	return m.On("Query", mock.Anything, query, mock.Anything).Return(rows, err)
}

// ExpectExec sets up an exec expectation with the provided result and error
func (m *MockTx) ExpectExec(query string, result sql.Result, err error) *mock.Call {
	return m.On("Exec", mock.Anything, query, mock.Anything).Return(result, err)
}

// ExpectDatabaseType sets up a database type expectation
func (m *MockTx) ExpectDatabaseType(dbType string) *mock.Call {
	return m.On("DatabaseType").Return(dbType)
}

// ExpectCommit sets up a commit expectation
func (m *MockTx) ExpectCommit(err error) *mock.Call {
	return m.On("Commit").Return(err)
}

// ExpectRollback sets up a rollback expectation
func (m *MockTx) ExpectRollback(err error) *mock.Call {
	return m.On("Rollback").Return(err)
}

// ExpectSuccessfulTransaction sets up expectations for a successful transaction
func (m *MockTx) ExpectSuccessfulTransaction() {
	m.On("Commit").Return(nil)
}

// ExpectFailedTransaction sets up expectations for a failed transaction that should be rolled back
func (m *MockTx) ExpectFailedTransaction(commitErr error) {
	m.On("Commit").Return(commitErr)
	m.On("Rollback").Return(nil)
}
