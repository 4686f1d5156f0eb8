// Package types holds the contracts shared by the database packages: the
// connection interfaces, compiled statements, results and the error taxonomy.
// It is kept separate from the database package to avoid import cycles.
//
//nolint:revive // Package name "types" is intentionally generic to avoid circular imports.
package types

// Vendor identifies a SQL dialect.
type Vendor = string

const (
	PostgreSQL Vendor = "postgresql"
	Oracle     Vendor = "oracle"
	MySQL      Vendor = "mysql"
	SQLite     Vendor = "sqlite"
)
