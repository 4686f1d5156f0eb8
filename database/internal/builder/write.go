package builder

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// writeScope is the primary schema alone: write statements never join.
func (q *Query) writeScope() *scope {
	return &scope{dialect: q.dialect, schemas: []*schema.Schema{q.primary}}
}

// checkWrite rejects read-only clauses on INSERT, UPDATE and DELETE.
func (q *Query) checkWrite() error {
	op := q.mode.String()
	switch {
	case len(q.joins) > 0:
		return &types.BuilderError{Op: op, Reason: "joins are not allowed"}
	case len(q.groupBy) > 0:
		return &types.BuilderError{Op: op, Reason: "group by is not allowed"}
	case len(q.orderBy) > 0:
		return &types.BuilderError{Op: op, Reason: "order by is not allowed"}
	case q.limit != nil || q.offset != nil:
		return &types.BuilderError{Op: op, Reason: "limit and offset are not allowed"}
	case q.mode == ModeInsert && len(q.where) > 0:
		return &types.BuilderError{Op: op, Reason: "where is not allowed"}
	}
	return nil
}

// filter renders the WHERE parts of an UPDATE or DELETE. A write without
// conditions is refused unless AllowUnfiltered was called.
func (q *Query) filter() ([]squirrel.Sqlizer, error) {
	parts, err := q.conditions(q.writeScope())
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 && !q.unfiltered {
		return nil, &types.BuilderError{
			Op:     q.mode.String(),
			Reason: fmt.Sprintf("refusing to %s every row of %q without a condition; call AllowUnfiltered", q.mode, q.primary.Table()),
		}
	}
	return parts, nil
}

func (q *Query) compileInsert() (*compiled, error) {
	if err := q.checkWrite(); err != nil {
		return nil, err
	}

	pk, cs, err := schema.Validate(q.primary, q.row)
	if err != nil {
		return nil, err
	}
	key := q.primary.PrimaryKey()
	if pk == nil {
		// an explicit nil key leaves generation to the database
		cs.Delete(key.Column())
	}
	if cs.Empty() {
		return nil, &schema.ValidationError{Table: q.primary.Table(), Reason: "nothing to insert"}
	}

	columns := cs.Columns()
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = q.dialect.Quote(col)
	}

	ib := q.dialect.statements().
		Insert(q.dialect.Quote(q.primary.Table())).
		Columns(quoted...).
		Values(cs.Values()...)

	stmt := types.Statement{Key: &key, Table: q.primary.Table()}
	out := &compiled{}

	switch {
	case pk != nil:
		stmt.Expect = types.ExpectRowCount
		out.suppliedKey = pk
	case q.dialect.Vendor() == types.PostgreSQL:
		ib = ib.Suffix("RETURNING " + q.dialect.Quote(key.Column()))
		stmt.Expect = types.ExpectLastID
		stmt.Returning = true
	case q.dialect.Vendor() == types.Oracle:
		dest := keyDestination(key.Type())
		ib = ib.Suffix("RETURNING "+q.dialect.Quote(key.Column())+" INTO ?", sql.Out{Dest: dest})
		stmt.Expect = types.ExpectLastID
		stmt.KeyOut = dest
	case key.Type() != schema.TypeInt:
		// LastInsertId only reports integer row ids
		return nil, &schema.ValidationError{
			Table:  q.primary.Table(),
			Field:  key.Name(),
			Reason: fmt.Sprintf("primary key must be supplied: %s cannot generate a %s key", q.dialect.Vendor(), key.Type()),
		}
	default:
		stmt.Expect = types.ExpectLastID
	}

	if stmt.SQL, stmt.Args, err = ib.ToSql(); err != nil {
		return nil, &types.BuilderError{Op: "insert", Reason: err.Error()}
	}
	out.stmt = stmt
	return out, nil
}

// keyDestination allocates the output bind for a generated key.
func keyDestination(t schema.ValueType) any {
	switch t {
	case schema.TypeInt:
		return new(int64)
	case schema.TypeFloat:
		return new(float64)
	case schema.TypeTime:
		return new(time.Time)
	case schema.TypeBytes:
		return new([]byte)
	default:
		return new(string)
	}
}

func (q *Query) compileUpdate() (*compiled, error) {
	if err := q.checkWrite(); err != nil {
		return nil, err
	}

	_, cs, err := schema.ValidateUpdate(q.primary, q.row)
	if err != nil {
		return nil, err
	}
	if cs.Empty() {
		return nil, &schema.ValidationError{Table: q.primary.Table(), Reason: "nothing to update"}
	}

	parts, err := q.filter()
	if err != nil {
		return nil, err
	}

	ub := q.dialect.statements().Update(q.dialect.Quote(q.primary.Table()))
	values := cs.Values()
	for i, col := range cs.Columns() {
		ub = ub.Set(q.dialect.Quote(col), values[i])
	}
	for _, part := range parts {
		ub = ub.Where(part)
	}

	query, args, err := ub.ToSql()
	if err != nil {
		return nil, &types.BuilderError{Op: "update", Reason: err.Error()}
	}
	return &compiled{stmt: types.Statement{
		SQL:    query,
		Args:   args,
		Expect: types.ExpectRowCount,
		Table:  q.primary.Table(),
	}}, nil
}

func (q *Query) compileDelete() (*compiled, error) {
	if err := q.checkWrite(); err != nil {
		return nil, err
	}

	parts, err := q.filter()
	if err != nil {
		return nil, err
	}

	db := q.dialect.statements().Delete(q.dialect.Quote(q.primary.Table()))
	for _, part := range parts {
		db = db.Where(part)
	}

	query, args, err := db.ToSql()
	if err != nil {
		return nil, &types.BuilderError{Op: "delete", Reason: err.Error()}
	}
	return &compiled{stmt: types.Statement{
		SQL:    query,
		Args:   args,
		Expect: types.ExpectRowCount,
		Table:  q.primary.Table(),
	}}, nil
}
