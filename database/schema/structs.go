package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// FromStruct declares a schema from struct tags:
//
//	type Person struct {
//		ID      int64     `db:"id,pk"`
//		Email   string    `db:"email,notnull" validate:"email"`
//		Archive int       `db:"archive" default:"0"`
//		Seen    time.Time `db:"last_seen"`
//		Notes   string    `db:"-"`
//	}
//
// The db tag name is both the logical and the physical name. Exported fields
// without a db tag are skipped, as are fields tagged "-".
func FromStruct(table string, structPtr any, opts ...Option) (*Schema, error) {
	rv := reflect.ValueOf(structPtr)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, &SchemaError{Table: table, Reason: fmt.Sprintf("FromStruct expects a pointer to struct, got %T", structPtr)}
	}

	rt := rv.Elem().Type()
	fields := make([]Field, 0, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, ok := sf.Tag.Lookup("db")
		if !ok || tag == "-" {
			continue
		}

		f, err := parseStructField(table, rt.Name(), sf, tag)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return Define(table, fields, opts...)
}

func parseStructField(table, structName string, sf reflect.StructField, tag string) (Field, error) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return Field{}, &SchemaError{Table: table, Field: sf.Name, Reason: fmt.Sprintf("empty db tag on %s.%s", structName, sf.Name)}
	}

	typ, err := valueTypeOf(sf.Type)
	if err != nil {
		return Field{}, &SchemaError{Table: table, Field: name, Reason: err.Error()}
	}

	var opts []FieldOption
	for _, flag := range parts[1:] {
		switch strings.TrimSpace(flag) {
		case "pk":
			opts = append(opts, PrimaryKey())
		case "notnull":
			opts = append(opts, NotNull())
		case "":
		default:
			return Field{}, &SchemaError{Table: table, Field: name, Reason: fmt.Sprintf("unknown db tag option %q", flag)}
		}
	}
	if def, ok := sf.Tag.Lookup("default"); ok {
		opts = append(opts, Default(def))
	}
	if rules := sf.Tag.Get("validate"); rules != "" {
		opts = append(opts, Rules(rules))
	}

	return NewField(name, typ, opts...), nil
}

// valueTypeOf maps a Go type, or the type a pointer points to, to a ValueType.
func valueTypeOf(t reflect.Type) (ValueType, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return TypeTime, nil
	case t == uuidType:
		return TypeUUID, nil
	case t == bytesType:
		return TypeBytes, nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt, nil
	case reflect.Float32, reflect.Float64:
		return TypeFloat, nil
	case reflect.String:
		return TypeString, nil
	case reflect.Bool:
		return TypeBool, nil
	default:
		return 0, fmt.Errorf("unsupported Go type %s", t)
	}
}
