// Package builder compiles chained query descriptions into parameterised SQL
// through squirrel and hands them to the execution bridge.
package builder

import (
	"context"
	"fmt"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// Mode is the kind of statement a Query produces.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelect
	ModeGet
	ModeInsert
	ModeUpdate
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeSelect:
		return "SELECT"
	case ModeGet:
		return "GET"
	case ModeInsert:
		return "INSERT"
	case ModeUpdate:
		return "UPDATE"
	case ModeDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// JoinKind is INNER or LEFT.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) String() string {
	if k == LeftJoin {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

type join struct {
	schema *schema.Schema
	kind   JoinKind
	on     JoinCondition
}

// Query accumulates one statement. Every method returns the same *Query;
// the first misuse is recorded and reported by ToSQL or Execute. A Query
// must not be reused after Execute and must not be shared between goroutines.
type Query struct {
	runner  types.Runner
	dialect Dialect

	primary *schema.Schema
	known   []*schema.Schema

	mode       Mode
	executed   bool
	selections []any
	joins      []join
	where      []Predicate
	groupBy    []schema.ColumnRef
	orderBy    []Order
	limit      *uint64
	offset     *uint64
	orNull     bool
	unfiltered bool
	row        map[string]any

	err error
}

// New starts a query on primary. others are the schemas the query may join.
func New(runner types.Runner, vendor string, primary *schema.Schema, others ...*schema.Schema) *Query {
	q := &Query{
		runner:  runner,
		dialect: NewDialect(vendor),
		primary: primary,
	}
	if primary == nil {
		q.fail("query", "a primary schema is required")
		return q
	}

	q.known = append(q.known, primary)
	for _, s := range others {
		switch {
		case s == nil:
			q.fail("query", "nil schema")
		case q.isKnown(s.Table()):
			q.fail("query", fmt.Sprintf("schema %q given twice", s.Table()))
		default:
			q.known = append(q.known, s)
		}
	}
	return q
}

// Mode returns the statement kind chosen so far.
func (q *Query) Mode() Mode { return q.mode }

// Err returns the first recorded builder error.
func (q *Query) Err() error { return q.err }

func (q *Query) fail(op, reason string) {
	if q.err == nil {
		q.err = &types.BuilderError{Op: op, Reason: reason}
	}
}

// usable guards every chained call: nothing may be added after Execute.
func (q *Query) usable(op string) bool {
	if q.executed {
		q.fail(op, "query has already been executed")
		return false
	}
	return true
}

func (q *Query) setMode(op string, mode Mode) bool {
	if !q.usable(op) {
		return false
	}
	if q.mode != ModeNone && q.mode != mode {
		q.fail(op, fmt.Sprintf("query is already in %s mode", q.mode))
		return false
	}
	q.mode = mode
	return true
}

func (q *Query) isKnown(table string) bool {
	for _, s := range q.known {
		if s.Table() == table {
			return true
		}
	}
	return false
}

// Select reads every matching row. Selections are schema.ColumnRef,
// Expression or Aggregate values; none means every field of the primary schema.
func (q *Query) Select(selections ...any) *Query {
	if q.setMode("select", ModeSelect) {
		q.selections = append(q.selections, selections...)
	}
	return q
}

// Get reads exactly one row. Zero rows is ErrNotFound unless OrNull is set;
// more than one row is ErrMultipleRows.
func (q *Query) Get(selections ...any) *Query {
	if q.setMode("get", ModeGet) {
		q.selections = append(q.selections, selections...)
	}
	return q
}

// OrNull makes a Get that finds nothing return no row instead of ErrNotFound.
func (q *Query) OrNull() *Query {
	if !q.usable("or_null") {
		return q
	}
	if q.mode != ModeGet {
		q.fail("or_null", "OrNull applies to Get queries only")
		return q
	}
	q.orNull = true
	return q
}

// LeftJoin adds LEFT JOIN s ON on.
func (q *Query) LeftJoin(s *schema.Schema, on JoinCondition) *Query {
	return q.join("left_join", LeftJoin, s, on)
}

// InnerJoin adds INNER JOIN s ON on.
func (q *Query) InnerJoin(s *schema.Schema, on JoinCondition) *Query {
	return q.join("inner_join", InnerJoin, s, on)
}

func (q *Query) join(op string, kind JoinKind, s *schema.Schema, on JoinCondition) *Query {
	if !q.usable(op) {
		return q
	}
	switch {
	case s == nil:
		q.fail(op, "nil schema")
	case !q.isKnown(s.Table()):
		q.fail(op, fmt.Sprintf("schema %q was not given to the query", s.Table()))
	case s.Table() == q.primary.Table():
		q.fail(op, fmt.Sprintf("cannot join primary schema %q to itself", s.Table()))
	case q.isJoined(s.Table()):
		q.fail(op, fmt.Sprintf("schema %q is already joined", s.Table()))
	case !q.isKnown(on.Left.Table()) || !q.isKnown(on.Right.Table()):
		q.fail(op, fmt.Sprintf("join condition %s = %s references a schema unknown to the query", on.Left, on.Right))
	default:
		q.joins = append(q.joins, join{schema: s, kind: kind, on: on})
	}
	return q
}

func (q *Query) isJoined(table string) bool {
	for _, j := range q.joins {
		if j.schema.Table() == table {
			return true
		}
	}
	return false
}

// Where adds a condition, ANDed with earlier ones. cond is a Predicate,
// a Match or a map[string]any; nil and empty maps add nothing.
func (q *Query) Where(cond any) *Query {
	if !q.usable("where") {
		return q
	}
	switch c := cond.(type) {
	case nil:
	case Predicate:
		q.where = append(q.where, c)
	case map[string]any:
		q.where = append(q.where, Match(c))
	default:
		q.fail("where", fmt.Sprintf("unsupported condition %T", cond))
	}
	return q
}

// GroupBy adds GROUP BY columns.
func (q *Query) GroupBy(columns ...schema.ColumnRef) *Query {
	if q.usable("group_by") {
		q.groupBy = append(q.groupBy, columns...)
	}
	return q
}

// OrderBy adds ORDER BY items, applied left to right.
func (q *Query) OrderBy(orders ...Order) *Query {
	if q.usable("order_by") {
		q.orderBy = append(q.orderBy, orders...)
	}
	return q
}

// Limit caps the number of rows read. Get queries reject it.
func (q *Query) Limit(n uint64) *Query {
	if !q.usable("limit") {
		return q
	}
	if q.mode == ModeGet {
		q.fail("limit", "Limit does not apply to Get queries")
		return q
	}
	q.limit = &n
	return q
}

// Offset skips rows. Get queries reject it.
func (q *Query) Offset(n uint64) *Query {
	if !q.usable("offset") {
		return q
	}
	if q.mode == ModeGet {
		q.fail("offset", "Offset does not apply to Get queries")
		return q
	}
	q.offset = &n
	return q
}

// Insert switches to INSERT mode for raw, validated with the primary schema.
func (q *Query) Insert(raw map[string]any) *Query {
	if q.setMode("insert", ModeInsert) {
		q.row = raw
	}
	return q
}

// Update switches to UPDATE mode: every matching row gets the validated
// values of raw. Defaults are not applied.
func (q *Query) Update(raw map[string]any) *Query {
	if q.setMode("update", ModeUpdate) {
		q.row = raw
	}
	return q
}

// Delete switches to DELETE mode.
func (q *Query) Delete() *Query {
	q.setMode("delete", ModeDelete)
	return q
}

// AllowUnfiltered permits an UPDATE or DELETE without conditions, which is
// otherwise rejected.
func (q *Query) AllowUnfiltered() *Query {
	if q.usable("allow_unfiltered") {
		q.unfiltered = true
	}
	return q
}

// ToSQL compiles the query without executing it.
func (q *Query) ToSQL() (string, []any, error) {
	if !q.usable("to_sql") {
		return "", nil, q.err
	}
	c, err := q.compile()
	if err != nil {
		return "", nil, err
	}
	return c.stmt.SQL, c.stmt.Args, nil
}

// Execute compiles and runs the query. The query cannot be used afterwards.
//
// SELECT returns every row, GET at most one, INSERT the primary key in
// Result.LastID and UPDATE/DELETE the affected row count.
func (q *Query) Execute(ctx context.Context) (*types.Result, error) {
	if !q.usable("execute") {
		return nil, q.err
	}
	q.executed = true

	c, err := q.compile()
	if err != nil {
		return nil, err
	}

	res, err := q.runner.Run(ctx, c.stmt)
	if err != nil {
		return nil, err
	}

	switch q.mode {
	case ModeGet:
		switch {
		case len(res.Rows) > 1:
			return nil, &types.MultipleRowsError{Table: q.primary.Table(), SQL: c.stmt.SQL}
		case len(res.Rows) == 0 && !q.orNull:
			return nil, &types.NotFoundError{Table: q.primary.Table(), SQL: c.stmt.SQL}
		}
	case ModeInsert:
		if c.suppliedKey != nil {
			res.LastID = c.suppliedKey
		}
	}
	return res, nil
}

// All executes a SELECT and returns its rows.
func (q *Query) All(ctx context.Context) ([]types.Row, error) {
	if q.mode == ModeNone {
		q.Select()
	}
	if q.mode != ModeSelect && q.mode != ModeGet {
		q.fail("all", fmt.Sprintf("All cannot run a %s query", q.mode))
	}
	res, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// One executes a GET and returns its row. With OrNull, a missing row is nil.
func (q *Query) One(ctx context.Context) (*types.Row, error) {
	if q.mode == ModeNone {
		q.Get()
	}
	if q.mode != ModeGet {
		q.fail("one", fmt.Sprintf("One cannot run a %s query", q.mode))
	}
	res, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	row := res.Rows[0]
	return &row, nil
}

// Exec executes an UPDATE or DELETE and returns the affected row count.
func (q *Query) Exec(ctx context.Context) (int64, error) {
	if q.mode != ModeUpdate && q.mode != ModeDelete {
		q.fail("exec", fmt.Sprintf("Exec cannot run a %s query", q.mode))
	}
	res, err := q.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return res.Affected, nil
}
