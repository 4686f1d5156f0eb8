package schema

import (
	"fmt"
	"sort"
)

// Changeset is the validated, typed subset of an input row, keyed by
// physical column and ordered by field declaration. It never holds a column
// that is absent from its schema.
type Changeset struct {
	schema  *Schema
	columns []string
	values  map[string]any
}

// NewChangeset returns an empty changeset bound to s.
func NewChangeset(s *Schema) *Changeset {
	return &Changeset{schema: s, values: make(map[string]any, len(s.fields))}
}

// Schema returns the schema the changeset belongs to.
func (c *Changeset) Schema() *Schema { return c.schema }

// Len returns the number of columns set.
func (c *Changeset) Len() int { return len(c.columns) }

// Empty reports whether no column is set.
func (c *Changeset) Empty() bool { return len(c.columns) == 0 }

// Columns returns the physical columns in declaration order.
func (c *Changeset) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// Values returns the values aligned with Columns.
func (c *Changeset) Values() []any {
	out := make([]any, len(c.columns))
	for i, col := range c.columns {
		out[i] = c.values[col]
	}
	return out
}

// Get returns the value stored for a physical column.
func (c *Changeset) Get(column string) (any, bool) {
	v, ok := c.values[column]
	return v, ok
}

// Has reports whether the column is set.
func (c *Changeset) Has(column string) bool {
	_, ok := c.values[column]
	return ok
}

// Set stores a value for a physical column after coercing it to the field's
// type. Unknown columns are rejected.
func (c *Changeset) Set(column string, value any) error {
	f, ok := c.schema.FieldByColumn(column)
	if !ok {
		return &ValidationError{
			Table:  c.schema.table,
			Field:  column,
			Reason: fmt.Sprintf("column is not part of schema %q", c.schema.table),
			Value:  value,
		}
	}

	coerced, err := coerceField(f, value)
	if err != nil {
		return err
	}

	c.put(column, coerced)
	return nil
}

// Delete removes a column from the changeset.
func (c *Changeset) Delete(column string) {
	if _, ok := c.values[column]; !ok {
		return
	}
	delete(c.values, column)
	for i, col := range c.columns {
		if col == column {
			c.columns = append(c.columns[:i], c.columns[i+1:]...)
			return
		}
	}
}

// Map returns a copy of the column to value mapping.
func (c *Changeset) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// put stores an already coerced value, keeping declaration order.
func (c *Changeset) put(column string, value any) {
	if _, exists := c.values[column]; !exists {
		pos := c.schema.byColumn[column]
		i := sort.Search(len(c.columns), func(i int) bool {
			return c.schema.byColumn[c.columns[i]] > pos
		})
		c.columns = append(c.columns, "")
		copy(c.columns[i+1:], c.columns[i:])
		c.columns[i] = column
	}
	c.values[column] = value
}

func coerceField(f Field, value any) (any, error) {
	if value == nil {
		if f.notNull {
			return nil, &ValidationError{Table: f.table, Field: f.name, Reason: "must not be null"}
		}
		return nil, nil
	}
	coerced, err := f.Coerce(value)
	if err != nil {
		return nil, &ValidationError{Table: f.table, Field: f.name, Reason: err.Error(), Value: value, Err: err}
	}
	return coerced, nil
}
