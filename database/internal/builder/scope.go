package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// scope is the set of schemas a compiled clause may reference.
type scope struct {
	dialect Dialect
	qualify bool
	schemas []*schema.Schema
}

func (sc *scope) lookup(table string) *schema.Schema {
	for _, s := range sc.schemas {
		if s.Table() == table {
			return s
		}
	}
	return nil
}

func (sc *scope) tables() []string {
	tables := make([]string, len(sc.schemas))
	for i, s := range sc.schemas {
		tables[i] = s.Table()
	}
	return tables
}

// resolve turns a field reference into rendered SQL for its column.
func (sc *scope) resolve(ref schema.ColumnRef) (string, schema.Field, error) {
	s := sc.lookup(ref.Table())
	if s == nil {
		return "", schema.Field{}, &types.UnknownColumnError{Column: ref.Name(), Table: ref.Table(), Scope: sc.tables()}
	}
	f, ok := s.Field(ref.Name())
	if !ok {
		return "", schema.Field{}, &types.UnknownColumnError{Column: ref.Name(), Table: ref.Table(), Scope: sc.tables()}
	}
	return sc.render(s.Table(), f.Column()), f, nil
}

// resolveName resolves a physical column name, optionally written as
// "table.column", against the schemas in scope.
func (sc *scope) resolveName(name string) (string, schema.Field, error) {
	if table, column, qualified := strings.Cut(name, "."); qualified {
		s := sc.lookup(table)
		if s == nil {
			return "", schema.Field{}, &types.UnknownColumnError{Column: column, Table: table, Scope: sc.tables()}
		}
		f, ok := s.FieldByColumn(column)
		if !ok {
			return "", schema.Field{}, &types.UnknownColumnError{Column: column, Table: table, Scope: sc.tables()}
		}
		return sc.render(table, f.Column()), f, nil
	}

	var (
		found schema.Field
		owner string
	)
	for _, s := range sc.schemas {
		f, ok := s.FieldByColumn(name)
		if !ok {
			continue
		}
		if owner != "" {
			return "", schema.Field{}, &types.BuilderError{
				Op:     "where",
				Reason: fmt.Sprintf("column %q is ambiguous between %q and %q; qualify it as table.column", name, owner, s.Table()),
			}
		}
		found, owner = f, s.Table()
	}
	if owner == "" {
		return "", schema.Field{}, &types.UnknownColumnError{Column: name, Scope: sc.tables()}
	}
	return sc.render(owner, found.Column()), found, nil
}

func (sc *scope) render(table, column string) string {
	col := sc.dialect.Quote(column)
	if !sc.qualify {
		return col
	}
	return sc.dialect.Quote(table) + "." + col
}

// bind coerces a filter value to the field type so the driver receives the
// same representation an insert would.
func bind(f schema.Field, value any) (any, error) {
	v, err := f.Coerce(value)
	if err != nil {
		return nil, &schema.ValidationError{Table: f.Table(), Field: f.Name(), Reason: err.Error(), Value: value, Err: err}
	}
	return v, nil
}

// sortedKeys returns the keys of m in a deterministic order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
