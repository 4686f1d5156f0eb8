package types

import (
	"context"
	"database/sql"
)

// Querier is the execution collaborator the query builder compiles for:
// run a statement with positional arguments and get rows or a result back.
// Connections, transactions, sql.DB wrappers and sqlmock-backed fakes all
// satisfy it.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// DatabaseType returns the vendor, which selects placeholders and quoting.
	DatabaseType() string
}

// Tx is a caller-managed transaction.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// Interface is a pooled connection to one database.
type Interface interface {
	Querier

	Begin(ctx context.Context) (Tx, error)
	Health(ctx context.Context) error
	Stats() (map[string]any, error)
	Close() error
}

// Runner executes compiled statements. The execution bridge implements it.
type Runner interface {
	Run(ctx context.Context, stmt Statement) (*Result, error)
}
