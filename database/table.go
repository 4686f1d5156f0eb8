package database

import (
	"context"

	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// Table runs single-table writes for one schema. Every write goes through
// the schema's changeset validator first.
type Table struct {
	db     *DB
	schema *schema.Schema
}

// Schema returns the table's schema.
func (t *Table) Schema() *schema.Schema { return t.schema }

// Insert validates raw and inserts it. It returns the primary key: the value
// supplied in raw, or the one generated by the database.
func (t *Table) Insert(ctx context.Context, raw map[string]any) (any, error) {
	res, err := t.db.Query(t.schema).Insert(raw).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return res.LastID, nil
}

// Update validates raw and sets its columns on every row matching match.
// Defaults are not applied. It fails with a *ValidationError when raw sets
// nothing, and with a *BuilderError when match is empty.
func (t *Table) Update(ctx context.Context, match Match, raw map[string]any) (int64, error) {
	return t.db.Query(t.schema).Update(raw).Where(match).Exec(ctx)
}

// Delete removes every row matching match. An empty match is refused.
func (t *Table) Delete(ctx context.Context, match Match) (int64, error) {
	return t.db.Query(t.schema).Delete().Where(match).Exec(ctx)
}

// Get returns the single row matching match.
func (t *Table) Get(ctx context.Context, match Match) (*types.Row, error) {
	return t.db.Query(t.schema).Get().Where(match).One(ctx)
}

// Find returns every row matching match.
func (t *Table) Find(ctx context.Context, match Match) ([]types.Row, error) {
	return t.db.Query(t.schema).Select().Where(match).All(ctx)
}

// GetByPK returns the row whose primary key is pk, or an error matching
// ErrNotFound.
func (t *Table) GetByPK(ctx context.Context, pk any) (*types.Row, error) {
	return t.db.Query(t.schema).Get().Where(t.byPK(pk)).One(ctx)
}

// UpdateByPK updates the row whose primary key is pk.
func (t *Table) UpdateByPK(ctx context.Context, pk any, raw map[string]any) (int64, error) {
	return t.db.Query(t.schema).Update(raw).Where(t.byPK(pk)).Exec(ctx)
}

// DeleteByPK deletes the row whose primary key is pk.
func (t *Table) DeleteByPK(ctx context.Context, pk any) (int64, error) {
	return t.db.Query(t.schema).Delete().Where(t.byPK(pk)).Exec(ctx)
}

func (t *Table) byPK(pk any) Predicate {
	return Eq(t.schema.C(t.schema.PrimaryKey().Name()), pk)
}
