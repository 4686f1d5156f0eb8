package database

import "github.com/gaborage/go-datamap/database/types"

// Re-export database vendor identifiers so callers only import this package.
const (
	PostgreSQL = types.PostgreSQL
	Oracle     = types.Oracle
	MySQL      = types.MySQL
	SQLite     = types.SQLite
)
