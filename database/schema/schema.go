// Package schema describes tables as immutable typed schemas and turns raw
// input rows into validated changesets.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Schema is the immutable description of one table. It is safe for
// concurrent use once Define returns.
type Schema struct {
	table    string
	fields   []Field
	byName   map[string]int
	byColumn map[string]int
	pk       int
	hooks    []Hook
	rules    *validator.Validate
}

// Option customises Define.
type Option func(*definition)

type definition struct {
	inherited [][]Field
	hooks     []Hook
}

// Inherit merges a shared field set (e.g. created/updated/archive columns)
// into the schema. Fields declared on the schema itself win on name collision;
// among inherited sets the first declaration wins.
func Inherit(fields ...Field) Option {
	return func(d *definition) { d.inherited = append(d.inherited, fields) }
}

// WithValidation appends hooks that run after the base validation, in order.
func WithValidation(hooks ...Hook) Option {
	return func(d *definition) { d.hooks = append(d.hooks, hooks...) }
}

// Define validates and freezes a table description.
//
// Declared fields keep their order and come first, followed by inherited
// fields that were not overridden. Exactly one field must be a primary key.
func Define(table string, fields []Field, opts ...Option) (*Schema, error) {
	var def definition
	for _, opt := range opts {
		opt(&def)
	}

	table = strings.TrimSpace(table)
	if table == "" {
		return nil, &SchemaError{Reason: "table name is required"}
	}
	if !identifierPattern.MatchString(table) {
		return nil, &SchemaError{Table: table, Reason: "table name is not a safe identifier"}
	}

	merged, err := mergeFields(table, fields, def.inherited)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, &SchemaError{Table: table, Reason: "schema declares no fields"}
	}

	s := &Schema{
		table:    table,
		fields:   merged,
		byName:   make(map[string]int, len(merged)),
		byColumn: make(map[string]int, len(merged)),
		pk:       -1,
		hooks:    def.hooks,
	}

	for i := range s.fields {
		if err := s.addField(i); err != nil {
			return nil, err
		}
	}

	if s.pk < 0 {
		return nil, &SchemaError{Table: table, Reason: "no primary key declared"}
	}

	return s, nil
}

// MustDefine is Define for package-level declarations; it panics on error.
func MustDefine(table string, fields []Field, opts ...Option) *Schema {
	s, err := Define(table, fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func mergeFields(table string, declared []Field, inherited [][]Field) ([]Field, error) {
	seen := make(map[string]struct{}, len(declared))
	merged := make([]Field, 0, len(declared))

	for _, f := range declared {
		if _, dup := seen[f.name]; dup {
			return nil, &SchemaError{Table: table, Field: f.name, Reason: "duplicate field name"}
		}
		seen[f.name] = struct{}{}
		merged = append(merged, f)
	}

	for _, set := range inherited {
		for _, f := range set {
			if _, overridden := seen[f.name]; overridden {
				continue
			}
			seen[f.name] = struct{}{}
			merged = append(merged, f)
		}
	}

	return merged, nil
}

func (s *Schema) addField(i int) error {
	f := &s.fields[i]
	f.table = s.table

	if !identifierPattern.MatchString(f.name) {
		return &SchemaError{Table: s.table, Field: f.name, Reason: "field name is not a safe identifier"}
	}
	if !identifierPattern.MatchString(f.column) {
		return &SchemaError{Table: s.table, Field: f.name, Reason: fmt.Sprintf("column %q is not a safe identifier", f.column)}
	}
	if f.typ < TypeInt || f.typ > TypeBytes {
		return &SchemaError{Table: s.table, Field: f.name, Reason: "unknown value type"}
	}
	if other, dup := s.byColumn[f.column]; dup {
		return &SchemaError{
			Table:  s.table,
			Field:  f.name,
			Reason: fmt.Sprintf("physical column %q already used by field %q", f.column, s.fields[other].name),
		}
	}

	if f.pk {
		if s.pk >= 0 {
			return &SchemaError{
				Table:  s.table,
				Field:  f.name,
				Reason: fmt.Sprintf("multiple primary keys (%q already declared)", s.fields[s.pk].name),
			}
		}
		s.pk = i
	}

	if f.hasDefault && f.def != nil {
		coerced, err := f.Coerce(f.def)
		if err != nil {
			return &SchemaError{Table: s.table, Field: f.name, Reason: "invalid default: " + err.Error()}
		}
		f.def = coerced
	}

	if f.rules != "" {
		if err := s.checkRules(f); err != nil {
			return err
		}
	}

	s.byName[f.name] = i
	s.byColumn[f.column] = i
	return nil
}

// checkRules compiles the field's validator tag once so that a typo fails at
// declaration time instead of on the first insert.
func (s *Schema) checkRules(f *Field) (err error) {
	if s.rules == nil {
		s.rules = validator.New(validator.WithRequiredStructEnabled())
	}
	defer func() {
		if r := recover(); r != nil {
			err = &SchemaError{Table: s.table, Field: f.name, Reason: fmt.Sprintf("invalid rules %q: %v", f.rules, r)}
		}
	}()
	_ = s.rules.Var(zeroValue(f.typ), f.rules)
	return nil
}

func zeroValue(t ValueType) any {
	switch t {
	case TypeInt:
		return int64(0)
	case TypeFloat:
		return float64(0)
	case TypeBool:
		return false
	case TypeTime:
		return time.Time{}
	case TypeUUID:
		return uuid.Nil
	case TypeBytes:
		return []byte{}
	default:
		return ""
	}
}

// Table returns the physical table name.
func (s *Schema) Table() string { return s.table }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks a field up by logical name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// FieldByColumn looks a field up by physical column name.
func (s *Schema) FieldByColumn(column string) (Field, bool) {
	i, ok := s.byColumn[column]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// PrimaryKey returns the primary key field.
func (s *Schema) PrimaryKey() Field { return s.fields[s.pk] }

// Columns returns the physical column names in declaration order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.column
	}
	return out
}

// C references a field by logical name for use in queries. The name is
// checked when the query is compiled.
func (s *Schema) C(name string) ColumnRef {
	return ColumnRef{table: s.table, name: name}
}

func (s *Schema) String() string { return s.table }

// ColumnRef points at a field of a schema.
type ColumnRef struct {
	table string
	name  string
}

// Table returns the referenced schema's table name.
func (r ColumnRef) Table() string { return r.table }

// Name returns the referenced logical field name.
func (r ColumnRef) Name() string { return r.name }

// IsZero reports whether r was never set.
func (r ColumnRef) IsZero() bool { return r.table == "" && r.name == "" }

// String renders table.name.
func (r ColumnRef) String() string { return r.table + "." + r.name }
