package types

import "github.com/gaborage/go-datamap/database/schema"

// Result is what the execution bridge returns.
type Result struct {
	Rows     []Row
	Affected int64
	LastID   any
}

// Row is one result row with values in selection order.
type Row struct {
	columns []string
	values  []any
	byKey   map[string]int
	byRef   map[string]int
}

// NewRow builds a row from the statement's output columns and converted values.
func NewRow(columns []OutputColumn, values []any) Row {
	r := Row{
		columns: make([]string, len(columns)),
		values:  values,
		byKey:   make(map[string]int, len(columns)),
		byRef:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		r.columns[i] = c.Key
		r.byKey[c.Key] = i
		if c.Ref != "" {
			r.byRef[c.Ref] = i
		}
	}
	return r
}

// Columns returns the row's keys in selection order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values returns the row's values in selection order.
func (r Row) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.values) }

// Get returns a value by key.
func (r Row) Get(key string) (any, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Value returns the value selected for a schema field.
func (r Row) Value(ref schema.ColumnRef) (any, bool) {
	i, ok := r.byRef[ref.String()]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Map returns the row as key to value.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for i, key := range r.columns {
		out[key] = r.values[i]
	}
	return out
}
