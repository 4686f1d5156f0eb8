package schema

import "fmt"

// ValueType is the declared type of a field. Values are coerced to the Go
// representation listed for each type before they reach the database.
type ValueType int

const (
	TypeInt    ValueType = iota + 1 // int64
	TypeFloat                       // float64
	TypeString                      // string
	TypeBool                        // bool
	TypeTime                        // time.Time
	TypeUUID                        // uuid.UUID
	TypeBytes                       // []byte
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	case TypeUUID:
		return "uuid"
	case TypeBytes:
		return "bytes"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// CastFunc converts an input value into the field's stored representation.
// It replaces the built-in coercion for the field it is attached to.
type CastFunc func(value any) (any, error)

// Field describes one column. Fields are values; a Schema keeps its own copies.
type Field struct {
	name       string
	column     string
	typ        ValueType
	def        any
	defFn      func() any
	hasDefault bool
	pk         bool
	notNull    bool
	rules      string
	cast       CastFunc
	table      string
}

// FieldOption configures a Field.
type FieldOption func(*Field)

// PrimaryKey marks the field as the table's primary key.
func PrimaryKey() FieldOption {
	return func(f *Field) { f.pk = true }
}

// Column sets the physical column name when it differs from the logical name.
func Column(physical string) FieldOption {
	return func(f *Field) { f.column = physical }
}

// Default sets the value applied on insert when the input omits the field.
func Default(value any) FieldOption {
	return func(f *Field) {
		f.def = value
		f.hasDefault = true
	}
}

// DefaultFunc computes the insert default on every validation, e.g. uuid.New
// for generated keys or time.Now for timestamps.
func DefaultFunc(fn func() any) FieldOption {
	return func(f *Field) {
		f.defFn = fn
		f.hasDefault = fn != nil
	}
}

// NotNull rejects explicit nil values during validation.
func NotNull() FieldOption {
	return func(f *Field) { f.notNull = true }
}

// Rules attaches go-playground/validator rules (e.g. "email", "min=2,max=64")
// checked after coercion.
func Rules(tag string) FieldOption {
	return func(f *Field) { f.rules = tag }
}

// Caster overrides type coercion for the field.
func Caster(fn CastFunc) FieldOption {
	return func(f *Field) { f.cast = fn }
}

// NewField declares a field of the given type. The physical column defaults
// to the logical name.
func NewField(name string, typ ValueType, opts ...FieldOption) Field {
	f := Field{name: name, column: name, typ: typ}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func Int(name string, opts ...FieldOption) Field    { return NewField(name, TypeInt, opts...) }
func Float(name string, opts ...FieldOption) Field  { return NewField(name, TypeFloat, opts...) }
func String(name string, opts ...FieldOption) Field { return NewField(name, TypeString, opts...) }
func Bool(name string, opts ...FieldOption) Field   { return NewField(name, TypeBool, opts...) }
func Time(name string, opts ...FieldOption) Field   { return NewField(name, TypeTime, opts...) }
func UUID(name string, opts ...FieldOption) Field   { return NewField(name, TypeUUID, opts...) }
func Bytes(name string, opts ...FieldOption) Field  { return NewField(name, TypeBytes, opts...) }

// Name returns the logical name used in raw input rows.
func (f Field) Name() string { return f.name }

// Column returns the physical column name.
func (f Field) Column() string { return f.column }

func (f Field) Type() ValueType { return f.typ }

// Default returns the default value and whether one was declared.
// Defaults declared with DefaultFunc are computed on each call.
func (f Field) Default() (any, bool) {
	if f.defFn != nil {
		return f.defFn(), true
	}
	return f.def, f.hasDefault
}

func (f Field) IsPrimaryKey() bool { return f.pk }

func (f Field) IsNotNull() bool { return f.notNull }

func (f Field) Rules() string { return f.rules }

// Table returns the owning table, empty until the field is part of a Schema.
func (f Field) Table() string { return f.table }

// Coerce converts value to the field's representation, using the field's
// Caster when one is set. nil passes through unchanged.
func (f Field) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if f.cast != nil {
		return f.cast(value)
	}
	return f.typ.Coerce(value)
}
