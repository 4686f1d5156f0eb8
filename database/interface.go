package database

import (
	"github.com/gaborage/go-datamap/database/types"
)

// Interface is a pooled connection to one database.
type Interface = types.Interface

// Querier is anything a query can be executed on: a connection, a
// transaction or a wrapped *sql.DB.
type Querier = types.Querier

// Tx is a caller-managed transaction.
type Tx = types.Tx

// Result is what executing a query returns.
type Result = types.Result

// Row is one result row.
type Row = types.Row
