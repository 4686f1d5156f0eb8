package builder

import (
	"fmt"
	"reflect"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// Predicate is a condition for a WHERE clause. Column references are checked
// against the query's schemas when the query is compiled; values always
// become bound parameters.
//
// A predicate that compiles to nothing (an empty Match, an empty And) adds no
// condition.
type Predicate interface {
	toSqlizer(sc *scope) (squirrel.Sqlizer, error)
}

// Comparison operators.
const (
	OpEq   = "="
	OpNeq  = "<>"
	OpLt   = "<"
	OpLte  = "<="
	OpGt   = ">"
	OpGte  = ">="
	OpLike = "LIKE"

	// OpILike renders as LOWER(col) LIKE LOWER(?) on every vendor.
	OpILike = "ILIKE"
)

// Comparison compares a column with a value, or with another column when
// Value is a schema.ColumnRef.
type Comparison struct {
	Column schema.ColumnRef
	Op     string
	Value  any
}

// Eq matches column = value. A nil value renders IS NULL.
func Eq(column schema.ColumnRef, value any) Comparison {
	return Comparison{Column: column, Op: OpEq, Value: value}
}

// NotEq matches column <> value. A nil value renders IS NOT NULL.
func NotEq(column schema.ColumnRef, value any) Comparison {
	return Comparison{Column: column, Op: OpNeq, Value: value}
}

func Lt(column schema.ColumnRef, value any) Comparison {
	return Comparison{Column: column, Op: OpLt, Value: value}
}

func Lte(column schema.ColumnRef, value any) Comparison {
	return Comparison{Column: column, Op: OpLte, Value: value}
}

func Gt(column schema.ColumnRef, value any) Comparison {
	return Comparison{Column: column, Op: OpGt, Value: value}
}

func Gte(column schema.ColumnRef, value any) Comparison {
	return Comparison{Column: column, Op: OpGte, Value: value}
}

// Like matches column LIKE pattern. The pattern is bound as given.
func Like(column schema.ColumnRef, pattern string) Comparison {
	return Comparison{Column: column, Op: OpLike, Value: pattern}
}

// ILike matches column LIKE pattern ignoring case.
func ILike(column schema.ColumnRef, pattern string) Comparison {
	return Comparison{Column: column, Op: OpILike, Value: pattern}
}

func (c Comparison) toSqlizer(sc *scope) (squirrel.Sqlizer, error) {
	col, f, err := sc.resolve(c.Column)
	if err != nil {
		return nil, err
	}

	switch c.Op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpLike, OpILike:
	default:
		return nil, &types.BuilderError{Op: "where", Reason: fmt.Sprintf("unsupported operator %q", c.Op)}
	}

	if other, ok := c.Value.(schema.ColumnRef); ok {
		rhs, _, err := sc.resolve(other)
		if err != nil {
			return nil, err
		}
		if c.Op == OpILike {
			return squirrel.Expr("LOWER(" + col + ") LIKE LOWER(" + rhs + ")"), nil
		}
		return squirrel.Expr(col + " " + c.Op + " " + rhs), nil
	}

	if c.Value == nil {
		switch c.Op {
		case OpEq:
			return squirrel.Expr(col + " IS NULL"), nil
		case OpNeq:
			return squirrel.Expr(col + " IS NOT NULL"), nil
		default:
			return nil, &types.BuilderError{Op: "where", Reason: fmt.Sprintf("cannot compare %s with NULL using %s", c.Column, c.Op)}
		}
	}

	value := c.Value
	switch c.Op {
	case OpLike:
	case OpILike:
		return squirrel.Expr("LOWER("+col+") LIKE LOWER(?)", value), nil
	default:
		if value, err = bind(f, value); err != nil {
			return nil, err
		}
	}
	return squirrel.Expr(col+" "+c.Op+" ?", value), nil
}

// InSet matches column IN (values...), or NOT IN when Negate is set.
// An empty set matches nothing (IN) or everything (NOT IN).
type InSet struct {
	Column schema.ColumnRef
	Values any
	Negate bool
}

// In matches column IN (values...). values must be a slice or array.
func In(column schema.ColumnRef, values any) InSet {
	return InSet{Column: column, Values: values}
}

// NotIn matches column NOT IN (values...).
func NotIn(column schema.ColumnRef, values any) InSet {
	return InSet{Column: column, Values: values, Negate: true}
}

func (p InSet) toSqlizer(sc *scope) (squirrel.Sqlizer, error) {
	col, f, err := sc.resolve(p.Column)
	if err != nil {
		return nil, err
	}

	values, err := toSlice(p.Values)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if values[i], err = bind(f, v); err != nil {
			return nil, err
		}
	}

	if p.Negate {
		return squirrel.NotEq{col: values}, nil
	}
	return squirrel.Eq{col: values}, nil
}

func toSlice(values any) ([]any, error) {
	if values == nil {
		return []any{}, nil
	}
	if typed, ok := values.([]any); ok {
		return append([]any(nil), typed...), nil
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &types.BuilderError{Op: "where", Reason: fmt.Sprintf("IN expects a slice, got %T", values)}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// NullCheck matches column IS NULL, or IS NOT NULL when Negate is set.
type NullCheck struct {
	Column schema.ColumnRef
	Negate bool
}

func IsNull(column schema.ColumnRef) NullCheck { return NullCheck{Column: column} }

func NotNull(column schema.ColumnRef) NullCheck { return NullCheck{Column: column, Negate: true} }

func (p NullCheck) toSqlizer(sc *scope) (squirrel.Sqlizer, error) {
	col, _, err := sc.resolve(p.Column)
	if err != nil {
		return nil, err
	}
	if p.Negate {
		return squirrel.Expr(col + " IS NOT NULL"), nil
	}
	return squirrel.Expr(col + " IS NULL"), nil
}

// RawPredicate is a caller-written SQL fragment with "?" placeholders. It is
// not checked against the schemas.
type RawPredicate struct {
	SQL  string
	Args []any
}

// Raw creates a RawPredicate. Args are merged positionally with the rest of
// the query's parameters.
func Raw(sql string, args ...any) RawPredicate {
	return RawPredicate{SQL: sql, Args: args}
}

func (p RawPredicate) toSqlizer(*scope) (squirrel.Sqlizer, error) {
	if p.SQL == "" {
		return nil, &types.BuilderError{Op: "where", Reason: "raw predicate has no SQL"}
	}
	return squirrel.Expr(p.SQL, p.Args...), nil
}

// Compound joins predicates with AND or OR. It always renders in parentheses.
type Compound struct {
	Or       bool
	Children []Predicate
}

// And matches when every predicate matches.
func And(predicates ...Predicate) Compound { return Compound{Children: predicates} }

// Or matches when any predicate matches.
func Or(predicates ...Predicate) Compound { return Compound{Or: true, Children: predicates} }

func (p Compound) toSqlizer(sc *scope) (squirrel.Sqlizer, error) {
	parts := make([]squirrel.Sqlizer, 0, len(p.Children))
	for _, child := range p.Children {
		if child == nil {
			continue
		}
		part, err := child.toSqlizer(sc)
		if err != nil {
			return nil, err
		}
		if part != nil {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	if p.Or {
		return squirrel.Or(parts), nil
	}
	return squirrel.And(parts), nil
}

// Negation inverts a predicate.
type Negation struct {
	Child Predicate
}

// Not matches when p does not.
func Not(p Predicate) Negation { return Negation{Child: p} }

func (p Negation) toSqlizer(sc *scope) (squirrel.Sqlizer, error) {
	if p.Child == nil {
		return nil, &types.BuilderError{Op: "where", Reason: "NOT needs a predicate"}
	}
	inner, err := p.Child.toSqlizer(sc)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		// NOT of "no condition" matches nothing.
		return squirrel.Expr("(1=0)"), nil
	}
	sql, args, err := inner.ToSql()
	if err != nil {
		return nil, err
	}
	if _, compound := p.Child.(Compound); compound {
		return squirrel.Expr("NOT "+sql, args...), nil
	}
	return squirrel.Expr("NOT ("+sql+")", args...), nil
}
