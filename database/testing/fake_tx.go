package testing

import (
	"context"
	"database/sql"
	"fmt"

	dbtypes "github.com/gaborage/go-datamap/database/types"
)

// TestTx is a fake transaction handed out by TestDB.Begin. It has its own
// expectations and call log, and records commit and rollback.
//
// Usage example:
//
//	db := NewTestDB(dbtypes.PostgreSQL)
//	tx := db.ExpectTransaction()
//	tx.ExpectExec("UPDATE persons").WillReturnRowsAffected(1)
//
//	// code under test begins, updates through database.New(tx), commits
//
//	AssertCommitted(t, tx)
type TestTx struct {
	script

	vendor     string
	committed  bool
	rolledBack bool
}

var _ dbtypes.Tx = (*TestTx)(nil)

// ExpectQuery registers the result of queries containing sqlPattern.
func (tx *TestTx) ExpectQuery(sqlPattern string) *QueryExpectation {
	return tx.expectQuery(sqlPattern)
}

// ExpectExec registers the result of execs containing sqlPattern.
func (tx *TestTx) ExpectExec(sqlPattern string) *ExecExpectation {
	return tx.expectExec(sqlPattern)
}

func (tx *TestTx) Query(_ context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	return tx.query(query, args)
}

func (tx *TestTx) Exec(_ context.Context, query string, args ...any) (sql.Result, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	return tx.exec(query, args)
}

func (tx *TestTx) DatabaseType() string { return tx.vendor }

// Commit ends the transaction. It fails if the transaction already ended.
func (tx *TestTx) Commit() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.committed = true
	return nil
}

// Rollback ends the transaction. It fails if the transaction already ended.
func (tx *TestTx) Rollback() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.rolledBack = true
	return nil
}

func (tx *TestTx) checkOpen() error {
	tx.mu.RLock()
	defer tx.mu.RUnlock()
	if tx.committed || tx.rolledBack {
		return sql.ErrTxDone
	}
	return nil
}

// IsCommitted reports whether Commit succeeded.
func (tx *TestTx) IsCommitted() bool {
	tx.mu.RLock()
	defer tx.mu.RUnlock()
	return tx.committed
}

// IsRolledBack reports whether Rollback succeeded.
func (tx *TestTx) IsRolledBack() bool {
	tx.mu.RLock()
	defer tx.mu.RUnlock()
	return tx.rolledBack
}

func (tx *TestTx) String() string {
	return fmt.Sprintf("TestTx(%s, committed=%t, rolled_back=%t)", tx.vendor, tx.IsCommitted(), tx.IsRolledBack())
}
