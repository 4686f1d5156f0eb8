// Package database maps schemas onto relational tables. It opens vendor
// connections, builds queries over schemas and runs schema-level writes
// (insert, update, delete) through the changeset validator.
//
// A DB is an explicit handle: create as many as needed, one per connection
// or transaction.
package database

import (
	"github.com/gaborage/go-datamap/database/internal/bridge"
	"github.com/gaborage/go-datamap/database/internal/builder"
	"github.com/gaborage/go-datamap/database/schema"
)

// DB runs queries on one connection or transaction.
type DB struct {
	conn   Querier
	bridge *bridge.Bridge
}

// New creates a DB over conn. conn may be a pooled connection, a
// transaction from Begin, or a *sql.DB wrapped with FromSQL.
func New(conn Querier) *DB {
	return &DB{conn: conn, bridge: bridge.New(conn)}
}

// Vendor returns the connection's database type.
func (db *DB) Vendor() string {
	if db.conn == nil {
		return ""
	}
	return db.conn.DatabaseType()
}

// Querier returns the underlying connection.
func (db *DB) Querier() Querier { return db.conn }

// Query starts a query on primary. others are the schemas the query may join.
func (db *DB) Query(primary *schema.Schema, others ...*schema.Schema) *Query {
	return builder.New(db.bridge, db.Vendor(), primary, others...)
}

// Table returns the write helpers for s.
func (db *DB) Table(s *schema.Schema) *Table {
	return &Table{db: db, schema: s}
}

// Close closes the underlying connection when it is one. Transactions and
// wrapped handles are left to their owner.
func (db *DB) Close() error {
	if conn, ok := db.conn.(Interface); ok {
		return conn.Close()
	}
	return nil
}
