// Package bridge executes compiled statements on a types.Querier and maps
// the driver's raw values to schema types.
package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/gaborage/go-datamap/database/types"
)

// Bridge runs statements on one connection or transaction. It never retries.
type Bridge struct {
	conn types.Querier
}

// New creates a Bridge over conn.
func New(conn types.Querier) *Bridge {
	return &Bridge{conn: conn}
}

// Querier returns the underlying connection.
func (b *Bridge) Querier() types.Querier { return b.conn }

// Run executes stmt and shapes the result according to stmt.Expect.
func (b *Bridge) Run(ctx context.Context, stmt types.Statement) (*types.Result, error) {
	if b.conn == nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: fmt.Errorf("no connection")}
	}

	switch stmt.Expect {
	case types.ExpectRows:
		rows, err := b.query(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return &types.Result{Rows: rows}, nil

	case types.ExpectRowCount:
		res, err := b.conn.Exec(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
		}
		return &types.Result{Affected: affected}, nil

	case types.ExpectLastID:
		return b.lastID(ctx, stmt)

	default:
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: fmt.Errorf("unsupported expectation %s", stmt.Expect)}
	}
}

func (b *Bridge) query(ctx context.Context, stmt types.Statement) (out []types.Row, err error) {
	rows, err := b.conn.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = &types.ExecutionError{SQL: stmt.SQL, Cause: cerr}
		}
	}()

	names, err := rows.Columns()
	if err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}

	columns := stmt.Columns
	switch {
	case len(columns) == 0:
		columns = make([]types.OutputColumn, len(names))
		for i, name := range names {
			columns[i] = types.OutputColumn{Key: name}
		}
	case len(columns) != len(names):
		return nil, &types.ExecutionError{
			SQL:   stmt.SQL,
			Cause: fmt.Errorf("expected %d columns, driver returned %d", len(columns), len(names)),
		}
	}

	for rows.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
		}

		values := make([]any, len(columns))
		for i, c := range columns {
			if values[i], err = convert(c, raw[i]); err != nil {
				return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
			}
		}
		out = append(out, types.NewRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}
	return out, nil
}

// lastID reads the generated key from a RETURNING row, an output bind or
// sql.Result.LastInsertId, in that order of preference.
func (b *Bridge) lastID(ctx context.Context, stmt types.Statement) (*types.Result, error) {
	if stmt.Returning {
		rows, err := b.query(ctx, types.Statement{SQL: stmt.SQL, Args: stmt.Args})
		if err != nil {
			return nil, err
		}
		if len(rows) != 1 || rows[0].Len() == 0 {
			return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: fmt.Errorf("expected one returned key, got %d rows", len(rows))}
		}
		id, err := convertKey(stmt, rows[0].Values()[0])
		if err != nil {
			return nil, err
		}
		return &types.Result{Affected: 1, LastID: id}, nil
	}

	res, err := b.conn.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}

	var raw any
	if stmt.KeyOut != nil {
		raw = reflect.Indirect(reflect.ValueOf(stmt.KeyOut)).Interface()
	} else if raw, err = lastInsertID(res); err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}

	id, err := convertKey(stmt, raw)
	if err != nil {
		return nil, err
	}
	return &types.Result{Affected: affected, LastID: id}, nil
}

func lastInsertID(res sql.Result) (any, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return id, nil
}

func convertKey(stmt types.Statement, raw any) (any, error) {
	if stmt.Key == nil {
		return raw, nil
	}
	id, err := convert(types.OutputColumn{Key: stmt.Key.Name(), Field: stmt.Key}, raw)
	if err != nil {
		return nil, &types.ExecutionError{SQL: stmt.SQL, Cause: err}
	}
	return id, nil
}
