package builder

import (
	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-datamap/database/schema"
)

// Match is a conjunction of equalities keyed by physical column name, or
// "table.column" when the query spans several schemas. nil values render
// IS NULL and schema.ColumnRef values compare two columns. An empty Match
// adds no condition.
type Match map[string]any

func (m Match) parts(sc *scope) ([]squirrel.Sqlizer, error) {
	if len(m) == 0 {
		return nil, nil
	}

	parts := make([]squirrel.Sqlizer, 0, len(m))
	for _, key := range sortedKeys(m) {
		col, f, err := sc.resolveName(key)
		if err != nil {
			return nil, err
		}

		switch value := m[key].(type) {
		case nil:
			parts = append(parts, squirrel.Expr(col+" IS NULL"))
		case schema.ColumnRef:
			rhs, _, err := sc.resolve(value)
			if err != nil {
				return nil, err
			}
			parts = append(parts, squirrel.Expr(col+" = "+rhs))
		default:
			bound, err := bind(f, value)
			if err != nil {
				return nil, err
			}
			parts = append(parts, squirrel.Expr(col+" = ?", bound))
		}
	}
	return parts, nil
}

func (m Match) toSqlizer(sc *scope) (squirrel.Sqlizer, error) {
	parts, err := m.parts(sc)
	if err != nil || len(parts) == 0 {
		return nil, err
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return squirrel.And(parts), nil
}

// conditions renders a top-level WHERE predicate. A Match contributes one
// condition per key so that squirrel joins them without extra parentheses.
func conditions(p Predicate, sc *scope) ([]squirrel.Sqlizer, error) {
	if m, ok := p.(Match); ok {
		return m.parts(sc)
	}
	part, err := p.toSqlizer(sc)
	if err != nil || part == nil {
		return nil, err
	}
	return []squirrel.Sqlizer{part}, nil
}
