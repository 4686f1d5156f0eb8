package types

import (
	"fmt"

	"github.com/gaborage/go-datamap/database/schema"
)

// Expect tells the execution bridge what a statement produces.
type Expect int

const (
	// ExpectRows reads a result set.
	ExpectRows Expect = iota
	// ExpectRowCount reports the number of affected rows.
	ExpectRowCount
	// ExpectLastID reports the key generated by an insert.
	ExpectLastID
)

func (e Expect) String() string {
	switch e {
	case ExpectRows:
		return "rows"
	case ExpectRowCount:
		return "rowcount"
	case ExpectLastID:
		return "last_id"
	default:
		return fmt.Sprintf("Expect(%d)", int(e))
	}
}

// OutputColumn describes one selected column of a result set.
type OutputColumn struct {
	// Key is the name the value is exposed under in a Row.
	Key string
	// Ref is "table.field" when the column is a schema field, empty otherwise.
	Ref string
	// Field, when set, converts the raw driver value.
	Field *schema.Field
	// Type converts the raw driver value of computed columns; zero keeps it as read.
	Type schema.ValueType
}

// Statement is a compiled SQL statement ready for execution.
type Statement struct {
	SQL    string
	Args   []any
	Expect Expect

	// Columns describes the result set for ExpectRows.
	Columns []OutputColumn

	// Key is the primary key field for ExpectLastID.
	Key *schema.Field

	// Returning marks inserts that read the generated key from a RETURNING
	// clause in the result set instead of sql.Result.LastInsertId.
	Returning bool

	// KeyOut receives the generated key through an output bind (Oracle
	// RETURNING ... INTO). It is also the last element of Args.
	KeyOut any

	// Table is the primary table, for error context.
	Table string
}
