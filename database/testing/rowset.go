package testing

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/DATA-DOG/go-sqlmock"
)

// RowSet is the result set a TestDB returns for a matched query.
//
// Usage example:
//
//	rows := NewRowSet("id", "email").
//	    AddRow(1, "alice@example.com").
//	    AddRow(2, "bob@example.com")
//
//	db.ExpectQuery("SELECT").WillReturnRows(rows)
type RowSet struct {
	columns []string
	rows    [][]driver.Value
}

// NewRowSet creates an empty RowSet with the given column names. Columns are
// reported by *sql.Rows in this order.
func NewRowSet(columns ...string) *RowSet {
	return &RowSet{columns: columns}
}

// AddRow appends one row. It panics when the value count does not match the
// column count.
func (rs *RowSet) AddRow(values ...any) *RowSet {
	if len(values) != len(rs.columns) {
		panic(fmt.Sprintf("AddRow: got %d values for %d columns", len(values), len(rs.columns)))
	}
	row := make([]driver.Value, len(values))
	for i, v := range values {
		row[i] = v
	}
	rs.rows = append(rs.rows, row)
	return rs
}

// AddRows appends count rows produced by generator.
func (rs *RowSet) AddRows(count int, generator func(i int) []any) *RowSet {
	for i := 0; i < count; i++ {
		rs.AddRow(generator(i)...)
	}
	return rs
}

// RowCount returns the number of rows.
func (rs *RowSet) RowCount() int { return len(rs.rows) }

// Columns returns the column names.
func (rs *RowSet) Columns() []string {
	return append([]string(nil), rs.columns...)
}

// toSQLRows materialises the RowSet as *sql.Rows through a one-shot sqlmock
// connection. The connection is closed with the rows.
func (rs *RowSet) toSQLRows() (*sql.Rows, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}

	mockRows := sqlmock.NewRows(rs.columns)
	for _, row := range rs.rows {
		mockRows.AddRow(row...)
	}
	mock.ExpectQuery(".*").WillReturnRows(mockRows)

	rows, err := db.QueryContext(context.Background(), "rowset")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// database/sql keeps the connection open until rows are closed.
	_ = db.Close()
	return rows, nil
}
