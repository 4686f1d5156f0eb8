package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-datamap/database/types"
)

// MockRunner is a testify mock of types.Runner, for code that consumes
// compiled statements directly.
type MockRunner struct {
	mock.Mock
}

var _ types.Runner = (*MockRunner)(nil)

// Run implements types.Runner
func (m *MockRunner) Run(ctx context.Context, stmt types.Statement) (*types.Result, error) {
	arguments := m.Called(ctx, stmt)
	result, _ := arguments.Get(0).(*types.Result)
	return result, arguments.Error(1)
}

// ExpectRun sets up an expectation for a statement with the given SQL.
func (m *MockRunner) ExpectRun(query string, result *types.Result, err error) *mock.Call {
	return m.On("Run", mock.Anything, mock.MatchedBy(func(stmt types.Statement) bool {
		return stmt.SQL == query
	})).Return(result, err)
}
