package database

import (
	"context"
	"database/sql"
)

// SQLHandle is the part of *sql.DB, *sql.Tx and *sql.Conn a query needs.
type SQLHandle interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// FromSQL adapts a database/sql handle opened elsewhere to a Querier for vendor.
func FromSQL(h SQLHandle, vendor string) Querier {
	return &sqlQuerier{h: h, vendor: vendor}
}

type sqlQuerier struct {
	h      SQLHandle
	vendor string
}

func (q *sqlQuerier) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.h.QueryContext(ctx, query, args...)
}

func (q *sqlQuerier) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.h.ExecContext(ctx, query, args...)
}

func (q *sqlQuerier) DatabaseType() string { return q.vendor }
