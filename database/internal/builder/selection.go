package builder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Expression is a raw SQL expression in a select list, exposed in result
// rows under its alias.
type Expression struct {
	SQL   string
	Alias string
	Args  []any
	Type  schema.ValueType
}

// Expr creates a raw select expression. The alias names the result column.
func Expr(sql, alias string, args ...any) Expression {
	return Expression{SQL: sql, Alias: alias, Args: args}
}

// As converts the expression's value to t when rows are read.
func (e Expression) As(t schema.ValueType) Expression {
	e.Type = t
	return e
}

// Aggregate applies an aggregate function to a field, or to * for CountAll.
type Aggregate struct {
	Func   string
	Column schema.ColumnRef
	Alias  string
	star   bool
}

// Count counts non-null values of a field.
func Count(column schema.ColumnRef) Aggregate { return Aggregate{Func: "COUNT", Column: column} }

// CountAll counts rows.
func CountAll() Aggregate { return Aggregate{Func: "COUNT", star: true} }

func Sum(column schema.ColumnRef) Aggregate { return Aggregate{Func: "SUM", Column: column} }

func Avg(column schema.ColumnRef) Aggregate { return Aggregate{Func: "AVG", Column: column} }

func Min(column schema.ColumnRef) Aggregate { return Aggregate{Func: "MIN", Column: column} }

func Max(column schema.ColumnRef) Aggregate { return Aggregate{Func: "MAX", Column: column} }

// As sets the result column name.
func (a Aggregate) As(alias string) Aggregate {
	a.Alias = alias
	return a
}

// Order is one ORDER BY item.
type Order struct {
	Column schema.ColumnRef
	Desc   bool
}

func Asc(column schema.ColumnRef) Order  { return Order{Column: column} }
func Desc(column schema.ColumnRef) Order { return Order{Column: column, Desc: true} }

// JoinCondition is the equality a join is made on.
type JoinCondition struct {
	Left  schema.ColumnRef
	Right schema.ColumnRef
}

// On joins where left = right.
func On(left, right schema.ColumnRef) JoinCondition {
	return JoinCondition{Left: left, Right: right}
}

// column is one compiled select-list entry.
type column struct {
	sql  string
	args []any
	out  types.OutputColumn
}

// selectColumn compiles a selection: a schema.ColumnRef, an Expression or an Aggregate.
func selectColumn(sc *scope, sel any) (column, error) {
	switch s := sel.(type) {
	case schema.ColumnRef:
		sql, f, err := sc.resolve(s)
		if err != nil {
			return column{}, err
		}
		return column{sql: sql, out: fieldOutput(sc, f)}, nil

	case Expression:
		if strings.TrimSpace(s.SQL) == "" {
			return column{}, &types.BuilderError{Op: "select", Reason: "expression has no SQL"}
		}
		if !aliasPattern.MatchString(s.Alias) {
			return column{}, &types.BuilderError{Op: "select", Reason: fmt.Sprintf("invalid alias %q for expression %q", s.Alias, s.SQL)}
		}
		return column{
			sql:  s.SQL + " AS " + sc.dialect.Quote(s.Alias),
			args: s.Args,
			out:  types.OutputColumn{Key: s.Alias, Type: s.Type},
		}, nil

	case Aggregate:
		return aggregateColumn(sc, s)

	default:
		return column{}, &types.BuilderError{Op: "select", Reason: fmt.Sprintf("unsupported selection %T", sel)}
	}
}

func aggregateColumn(sc *scope, a Aggregate) (column, error) {
	switch a.Func {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
	default:
		return column{}, &types.BuilderError{Op: "select", Reason: fmt.Sprintf("unsupported aggregate %q", a.Func)}
	}

	alias := a.Alias
	var (
		arg = "*"
		typ = schema.TypeInt
	)
	if !a.star {
		sql, f, err := sc.resolve(a.Column)
		if err != nil {
			return column{}, err
		}
		arg = sql
		switch a.Func {
		case "AVG":
			typ = schema.TypeFloat
		case "SUM", "MIN", "MAX":
			typ = f.Type()
		}
		if alias == "" {
			alias = strings.ToLower(a.Func) + "_" + f.Name()
		}
	}
	if alias == "" {
		alias = strings.ToLower(a.Func)
	}
	if !aliasPattern.MatchString(alias) {
		return column{}, &types.BuilderError{Op: "select", Reason: fmt.Sprintf("invalid alias %q", alias)}
	}

	return column{
		sql: fmt.Sprintf("%s(%s) AS %s", a.Func, arg, sc.dialect.Quote(alias)),
		out: types.OutputColumn{Key: alias, Type: typ},
	}, nil
}

// fieldOutput names a field in result rows: its logical name, or
// "table.name" when the query spans several schemas.
func fieldOutput(sc *scope, f schema.Field) types.OutputColumn {
	ref := f.Table() + "." + f.Name()
	key := f.Name()
	if sc.qualify {
		key = ref
	}
	field := f
	return types.OutputColumn{Key: key, Ref: ref, Field: &field}
}
