package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

var (
	persons = schema.MustDefine("persons", []schema.Field{
		schema.Int("id", schema.PrimaryKey()),
		schema.String("email"),
		schema.String("first_name"),
		schema.String("last_name"),
		schema.Int("archive", schema.Default(0)),
	})

	users = schema.MustDefine("users", []schema.Field{
		schema.Int("id", schema.PrimaryKey()),
		schema.Int("person_id"),
		schema.String("name"),
	})

	accounts = schema.MustDefine("accounts", []schema.Field{
		schema.Int("id", schema.PrimaryKey()),
		schema.Int("user_id"),
	})

	auditLog = schema.MustDefine("audit_log", []schema.Field{
		schema.Int("id", schema.PrimaryKey()),
		schema.String("user"),
		schema.Time("date"),
	})

	tags = schema.MustDefine("tags", []schema.Field{
		schema.String("code", schema.PrimaryKey()),
		schema.String("label"),
	})
)

// stubRunner records the statements it receives and replays canned results.
type stubRunner struct {
	stmts  []types.Statement
	result *types.Result
	err    error
}

func (r *stubRunner) Run(_ context.Context, stmt types.Statement) (*types.Result, error) {
	r.stmts = append(r.stmts, stmt)
	if r.err != nil {
		return nil, r.err
	}
	if r.result == nil {
		return &types.Result{}, nil
	}
	return r.result, nil
}

func personRow(values ...any) types.Row {
	cols := make([]types.OutputColumn, 0, len(persons.Fields()))
	for _, f := range persons.Fields() {
		cols = append(cols, types.OutputColumn{Key: f.Name(), Ref: persons.Table() + "." + f.Name()})
	}
	return types.NewRow(cols[:len(values)], values)
}

// renderStatement is the golden file format: SQL on the first line, then
// each argument as Type(value).
func renderStatement(sql string, args []any) []byte {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%T(%v)", a, a)
	}
	return []byte(sql + "\n" + strings.Join(parts, " "))
}
