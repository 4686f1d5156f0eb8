package builder

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// getLimit is applied to Get queries without an explicit limit so that a
// second matching row can be detected.
const getLimit uint64 = 2

type compiled struct {
	stmt types.Statement
	// suppliedKey is the primary key an insert carried in its changeset.
	suppliedKey any
}

func (q *Query) compile() (*compiled, error) {
	if q.err != nil {
		return nil, q.err
	}

	switch q.mode {
	case ModeNone, ModeSelect, ModeGet:
		return q.compileSelect()
	case ModeInsert:
		return q.compileInsert()
	case ModeUpdate:
		return q.compileUpdate()
	case ModeDelete:
		return q.compileDelete()
	default:
		return nil, &types.BuilderError{Op: "compile", Reason: fmt.Sprintf("unknown mode %s", q.mode)}
	}
}

// readScope covers the primary schema and every joined schema. Columns are
// qualified whenever the query was given more than one schema.
func (q *Query) readScope() *scope {
	schemas := make([]*schema.Schema, 0, len(q.joins)+1)
	schemas = append(schemas, q.primary)
	for _, j := range q.joins {
		schemas = append(schemas, j.schema)
	}
	return &scope{dialect: q.dialect, qualify: len(q.known) > 1, schemas: schemas}
}

func (q *Query) compileSelect() (*compiled, error) {
	sc := q.readScope()

	selections := q.selections
	if len(selections) == 0 {
		for _, f := range q.primary.Fields() {
			selections = append(selections, q.primary.C(f.Name()))
		}
	}

	sb := q.dialect.statements().Select()
	outputs := make([]types.OutputColumn, 0, len(selections))
	seen := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		col, err := selectColumn(sc, sel)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[col.out.Key]; dup {
			return nil, &types.BuilderError{Op: "select", Reason: fmt.Sprintf("column %q selected twice", col.out.Key)}
		}
		seen[col.out.Key] = struct{}{}
		sb = sb.Column(squirrel.Expr(col.sql, col.args...))
		outputs = append(outputs, col.out)
	}

	sb = sb.From(q.dialect.Quote(q.primary.Table()))

	var err error
	if sb, err = q.applyJoins(sb, sc); err != nil {
		return nil, err
	}

	parts, err := q.conditions(sc)
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		sb = sb.Where(part)
	}

	if len(q.groupBy) > 0 {
		groups := make([]string, 0, len(q.groupBy))
		for _, ref := range q.groupBy {
			col, _, err := sc.resolve(ref)
			if err != nil {
				return nil, err
			}
			groups = append(groups, col)
		}
		sb = sb.GroupBy(groups...)
	}

	if len(q.orderBy) > 0 {
		orders := make([]string, 0, len(q.orderBy))
		for _, o := range q.orderBy {
			col, _, err := sc.resolve(o.Column)
			if err != nil {
				return nil, err
			}
			if o.Desc {
				orders = append(orders, col+" DESC")
			} else {
				orders = append(orders, col+" ASC")
			}
		}
		sb = sb.OrderBy(orders...)
	}

	limit := q.limit
	if q.mode == ModeGet {
		if q.limit != nil || q.offset != nil {
			return nil, &types.BuilderError{Op: "get", Reason: "Limit and Offset do not apply to Get queries"}
		}
		n := getLimit
		limit = &n
	}
	sb = q.dialect.paginate(sb, limit, q.offset)

	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, &types.BuilderError{Op: "compile", Reason: err.Error()}
	}

	return &compiled{stmt: types.Statement{
		SQL:     sql,
		Args:    args,
		Expect:  types.ExpectRows,
		Columns: outputs,
		Table:   q.primary.Table(),
	}}, nil
}

// applyJoins renders joins in declaration order. A join condition may only
// reference the primary schema and the schemas joined so far.
func (q *Query) applyJoins(sb squirrel.SelectBuilder, sc *scope) (squirrel.SelectBuilder, error) {
	for i, j := range q.joins {
		visible := &scope{dialect: sc.dialect, qualify: sc.qualify, schemas: sc.schemas[:i+2]}

		left, _, err := visible.resolve(j.on.Left)
		if err != nil {
			return sb, err
		}
		right, _, err := visible.resolve(j.on.Right)
		if err != nil {
			return sb, err
		}

		clause := fmt.Sprintf("%s ON %s = %s", q.dialect.Quote(j.schema.Table()), left, right)
		if j.kind == LeftJoin {
			sb = sb.LeftJoin(clause)
		} else {
			sb = sb.InnerJoin(clause)
		}
	}
	return sb, nil
}

// conditions renders every Where call; their parts are ANDed by squirrel.
func (q *Query) conditions(sc *scope) ([]squirrel.Sqlizer, error) {
	var parts []squirrel.Sqlizer
	for _, p := range q.where {
		ps, err := conditions(p, sc)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ps...)
	}
	return parts, nil
}
