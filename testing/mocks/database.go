package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-datamap/database/types"
)

// MockDatabase is a testify mock of types.Interface. Bound arguments are
// passed to Called as one []any, so expectations match them with a single
// matcher.
//
// Example usage:
//
//	mockDB := &mocks.MockDatabase{}
//	mockDB.ExpectDatabaseType(types.PostgreSQL)
//	mockDB.ExpectExec("DELETE FROM persons WHERE id = $1", fixtures.NewMockResult(0, 1), nil)
//
//	n, err := database.New(mockDB).Table(persons).DeleteByPK(ctx, 7)
type MockDatabase struct {
	mock.Mock
}

var _ types.Interface = (*MockDatabase)(nil)

// Query implements types.Interface
func (m *MockDatabase) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	arguments := m.Called(ctx, query, args)
	rows, _ := arguments.Get(0).(*sql.Rows)
	return rows, arguments.Error(1)
}

// Exec implements types.Interface
func (m *MockDatabase) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	arguments := m.Called(ctx, query, args)
	result, _ := arguments.Get(0).(sql.Result)
	return result, arguments.Error(1)
}

// Begin implements types.Interface
func (m *MockDatabase) Begin(ctx context.Context) (types.Tx, error) {
	arguments := m.Called(ctx)
	tx, _ := arguments.Get(0).(types.Tx)
	return tx, arguments.Error(1)
}

// Health implements types.Interface
func (m *MockDatabase) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Stats implements types.Interface
func (m *MockDatabase) Stats() (map[string]any, error) {
	arguments := m.Called()
	stats, _ := arguments.Get(0).(map[string]any)
	return stats, arguments.Error(1)
}

// Close implements types.Interface
func (m *MockDatabase) Close() error {
	return m.Called().Error(0)
}

// DatabaseType implements types.Interface
func (m *MockDatabase) DatabaseType() string {
	return m.Called().String(0)
}

// ExpectHealthCheck sets up a health check expectation
func (m *MockDatabase) ExpectHealthCheck(healthy bool) *mock.Call {
	if healthy {
		return m.On("Health", mock.Anything).Return(nil)
	}
	return m.On("Health", mock.Anything).Return(sql.ErrConnDone)
}

// ExpectQuery sets up a query expectation with the provided rows and error
func (m *MockDatabase) ExpectQuery(query string, rows *sql.Rows, err error) *mock.Call {
	return m.On("Query", mock.Anything, query, mock.Anything).Return(rows, err)
}

// ExpectExec sets up an exec expectation with the provided result and error
func (m *MockDatabase) ExpectExec(query string, result sql.Result, err error) *mock.Call {
	return m.On("Exec", mock.Anything, query, mock.Anything).Return(result, err)
}

// ExpectTransaction sets up a Begin expectation returning tx
func (m *MockDatabase) ExpectTransaction(tx types.Tx, err error) *mock.Call {
	return m.On("Begin", mock.Anything).Return(tx, err)
}

// ExpectDatabaseType sets up a database type expectation
func (m *MockDatabase) ExpectDatabaseType(dbType string) *mock.Call {
	return m.On("DatabaseType").Return(dbType)
}

// ExpectStats sets up a stats expectation with the provided stats and error
func (m *MockDatabase) ExpectStats(stats map[string]any, err error) *mock.Call {
	return m.On("Stats").Return(stats, err)
}

// ExpectClose sets up a close expectation
func (m *MockDatabase) ExpectClose(err error) *mock.Call {
	return m.On("Close").Return(err)
}
