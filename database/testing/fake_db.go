// Package testing provides an in-memory fake connection for unit tests of
// code built on go-datamap. TestDB implements types.Interface with
// expectation-based results, so queries built with database.New(testDB)
// run end to end without a database.
//
// Rows returned by Query must be closed by the caller, as with any *sql.Rows.
//
// For integration tests against a real PostgreSQL server, see the container
// helpers in testing/containers.
package testing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	dbtypes "github.com/gaborage/go-datamap/database/types"
)

// TestDB is an in-memory fake database. Expected statements are matched by
// substring by default, or exactly after StrictSQLMatching.
//
// Usage example:
//
//	db := NewTestDB(dbtypes.SQLite)
//	db.ExpectExec("INSERT INTO persons").WillReturnLastInsertID(7)
//	db.ExpectQuery("SELECT id, email").WillReturnRows(NewRowSet("id", "email").AddRow(7, "a@b"))
//
//	id, err := database.New(db).Table(persons).Insert(ctx, raw)
type TestDB struct {
	script

	vendor       string
	transactions []*TestTx
	started      []*TestTx
	closed       bool
}

var _ dbtypes.Interface = (*TestDB)(nil)

// Call is one recorded Query or Exec invocation.
type Call struct {
	SQL  string
	Args []any
}

// QueryExpectation defines the result of a matched Query.
type QueryExpectation struct {
	sql  string
	rows *RowSet
	err  error
}

// WillReturnRows sets the rows returned for the query.
func (qe *QueryExpectation) WillReturnRows(rows *RowSet) *QueryExpectation {
	qe.rows = rows
	return qe
}

// WillReturnError makes the query fail with err.
func (qe *QueryExpectation) WillReturnError(err error) *QueryExpectation {
	qe.err = err
	return qe
}

// ExecExpectation defines the result of a matched Exec.
type ExecExpectation struct {
	sql          string
	rowsAffected int64
	lastInsertID int64
	err          error
}

// WillReturnRowsAffected sets RowsAffected of the result.
func (ee *ExecExpectation) WillReturnRowsAffected(n int64) *ExecExpectation {
	ee.rowsAffected = n
	return ee
}

// WillReturnLastInsertID sets LastInsertId of the result. RowsAffected
// becomes 1 unless set explicitly.
func (ee *ExecExpectation) WillReturnLastInsertID(id int64) *ExecExpectation {
	ee.lastInsertID = id
	if ee.rowsAffected == 0 {
		ee.rowsAffected = 1
	}
	return ee
}

// WillReturnError makes the exec fail with err.
func (ee *ExecExpectation) WillReturnError(err error) *ExecExpectation {
	ee.err = err
	return ee
}

// script holds expectations and the call log shared by TestDB and TestTx.
type script struct {
	mu       sync.RWMutex
	strict   bool
	queries  []*QueryExpectation
	execs    []*ExecExpectation
	queryLog []Call
	execLog  []Call
}

func (s *script) matchSQL(expected, actual string) bool {
	if s.strict {
		return expected == actual
	}
	return strings.Contains(actual, expected)
}

func (s *script) expectQuery(sqlPattern string) *QueryExpectation {
	s.mu.Lock()
	defer s.mu.Unlock()
	qe := &QueryExpectation{sql: sqlPattern, rows: NewRowSet()}
	s.queries = append(s.queries, qe)
	return qe
}

func (s *script) expectExec(sqlPattern string) *ExecExpectation {
	s.mu.Lock()
	defer s.mu.Unlock()
	ee := &ExecExpectation{sql: sqlPattern}
	s.execs = append(s.execs, ee)
	return ee
}

func (s *script) query(query string, args []any) (*sql.Rows, error) {
	s.mu.Lock()
	s.queryLog = append(s.queryLog, Call{SQL: query, Args: args})
	var exp *QueryExpectation
	for _, qe := range s.queries {
		if s.matchSQL(qe.sql, query) {
			exp = qe
			break
		}
	}
	s.mu.Unlock()

	if exp == nil {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if exp.err != nil {
		return nil, exp.err
	}
	return exp.rows.toSQLRows()
}

func (s *script) exec(query string, args []any) (sql.Result, error) {
	s.mu.Lock()
	s.execLog = append(s.execLog, Call{SQL: query, Args: args})
	var exp *ExecExpectation
	for _, ee := range s.execs {
		if s.matchSQL(ee.sql, query) {
			exp = ee
			break
		}
	}
	s.mu.Unlock()

	if exp == nil {
		return nil, fmt.Errorf("unexpected exec: %s", query)
	}
	if exp.err != nil {
		return nil, exp.err
	}
	return &testResult{rowsAffected: exp.rowsAffected, lastInsertID: exp.lastInsertID}, nil
}

// QueryLog returns every Query call so far.
func (s *script) QueryLog() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Call(nil), s.queryLog...)
}

// ExecLog returns every Exec call so far.
func (s *script) ExecLog() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Call(nil), s.execLog...)
}

// NewTestDB creates an empty fake database for vendor.
func NewTestDB(vendor string) *TestDB {
	return &TestDB{vendor: vendor}
}

// StrictSQLMatching requires expected SQL to equal the executed SQL.
func (db *TestDB) StrictSQLMatching() *TestDB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.strict = true
	return db
}

// ExpectQuery registers the result of queries containing sqlPattern.
func (db *TestDB) ExpectQuery(sqlPattern string) *QueryExpectation {
	return db.expectQuery(sqlPattern)
}

// ExpectExec registers the result of execs containing sqlPattern.
func (db *TestDB) ExpectExec(sqlPattern string) *ExecExpectation {
	return db.expectExec(sqlPattern)
}

// ExpectTransaction queues a transaction for the next Begin.
func (db *TestDB) ExpectTransaction() *TestTx {
	db.mu.Lock()
	defer db.mu.Unlock()
	tx := &TestTx{vendor: db.vendor}
	tx.strict = db.strict
	db.transactions = append(db.transactions, tx)
	return tx
}

// Query implements types.Querier.
func (db *TestDB) Query(_ context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.query(query, args)
}

// Exec implements types.Querier.
func (db *TestDB) Exec(_ context.Context, query string, args ...any) (sql.Result, error) {
	return db.exec(query, args)
}

// DatabaseType implements types.Querier.
func (db *TestDB) DatabaseType() string { return db.vendor }

// Begin hands out the next transaction queued with ExpectTransaction.
func (db *TestDB) Begin(_ context.Context) (dbtypes.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.transactions) == 0 {
		return nil, fmt.Errorf("unexpected Begin: no transaction expected")
	}
	tx := db.transactions[0]
	db.transactions = db.transactions[1:]
	db.started = append(db.started, tx)
	return tx, nil
}

// Health always succeeds.
func (db *TestDB) Health(context.Context) error { return nil }

// Stats reports the recorded call counts.
func (db *TestDB) Stats() (map[string]any, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return map[string]any{
		"vendor":  db.vendor,
		"queries": len(db.queryLog),
		"execs":   len(db.execLog),
	}, nil
}

// Close marks the fake closed.
func (db *TestDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (db *TestDB) IsClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}

// StartedTransactions returns the transactions handed out by Begin.
func (db *TestDB) StartedTransactions() []*TestTx {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]*TestTx(nil), db.started...)
}

type testResult struct {
	rowsAffected int64
	lastInsertID int64
}

func (r *testResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }

func (r *testResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }
