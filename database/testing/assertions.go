package testing

import (
	"fmt"
	"strings"
	"testing"
)

// Recorder is a TestDB or TestTx.
type Recorder interface {
	QueryLog() []Call
	ExecLog() []Call
	matchSQL(expected, actual string) bool
}

// AssertQueryExecuted asserts that a query matching sqlPattern ran.
//
//	AssertQueryExecuted(t, db, "SELECT id, email FROM persons")
func AssertQueryExecuted(t *testing.T, r Recorder, sqlPattern string) {
	t.Helper()
	if countMatches(r, r.QueryLog(), sqlPattern) == 0 {
		t.Errorf("expected query not executed: %q\nActual queries:\n%s", sqlPattern, formatLog(r.QueryLog(), "queries"))
	}
}

// AssertQueryNotExecuted asserts that no query matching sqlPattern ran.
func AssertQueryNotExecuted(t *testing.T, r Recorder, sqlPattern string) {
	t.Helper()
	if n := countMatches(r, r.QueryLog(), sqlPattern); n > 0 {
		t.Errorf("unexpected query executed %d time(s): %q", n, sqlPattern)
	}
}

// AssertQueryCount asserts that exactly expected queries matching sqlPattern ran.
func AssertQueryCount(t *testing.T, r Recorder, sqlPattern string, expected int) {
	t.Helper()
	if n := countMatches(r, r.QueryLog(), sqlPattern); n != expected {
		t.Errorf("expected %d queries matching %q, got %d\nActual queries:\n%s",
			expected, sqlPattern, n, formatLog(r.QueryLog(), "queries"))
	}
}

// AssertExecExecuted asserts that an exec matching sqlPattern ran.
//
//	AssertExecExecuted(t, db, "INSERT INTO persons")
func AssertExecExecuted(t *testing.T, r Recorder, sqlPattern string) {
	t.Helper()
	if countMatches(r, r.ExecLog(), sqlPattern) == 0 {
		t.Errorf("expected exec not executed: %q\nActual execs:\n%s", sqlPattern, formatLog(r.ExecLog(), "execs"))
	}
}

// AssertExecNotExecuted asserts that no exec matching sqlPattern ran.
func AssertExecNotExecuted(t *testing.T, r Recorder, sqlPattern string) {
	t.Helper()
	if n := countMatches(r, r.ExecLog(), sqlPattern); n > 0 {
		t.Errorf("unexpected exec executed %d time(s): %q", n, sqlPattern)
	}
}

// AssertExecCount asserts that exactly expected execs matching sqlPattern ran.
func AssertExecCount(t *testing.T, r Recorder, sqlPattern string, expected int) {
	t.Helper()
	if n := countMatches(r, r.ExecLog(), sqlPattern); n != expected {
		t.Errorf("expected %d execs matching %q, got %d\nActual execs:\n%s",
			expected, sqlPattern, n, formatLog(r.ExecLog(), "execs"))
	}
}

// AssertCommitted asserts that tx was committed.
func AssertCommitted(t *testing.T, tx *TestTx) {
	t.Helper()
	if !tx.IsCommitted() {
		t.Errorf("expected transaction to be committed, but it was not\nRolled back: %v", tx.IsRolledBack())
	}
}

// AssertRolledBack asserts that tx was rolled back.
func AssertRolledBack(t *testing.T, tx *TestTx) {
	t.Helper()
	if !tx.IsRolledBack() {
		t.Errorf("expected transaction to be rolled back, but it was not\nCommitted: %v", tx.IsCommitted())
	}
}

// AssertNoTransaction asserts that Begin was never called on db.
func AssertNoTransaction(t *testing.T, db *TestDB) {
	t.Helper()
	if started := db.StartedTransactions(); len(started) > 0 {
		t.Errorf("expected no transaction, %d started", len(started))
	}
}

func countMatches(r Recorder, log []Call, sqlPattern string) int {
	n := 0
	for _, call := range log {
		if r.matchSQL(sqlPattern, call.SQL) {
			n++
		}
	}
	return n
}

func formatLog(log []Call, what string) string {
	if len(log) == 0 {
		return fmt.Sprintf("  (no %s executed)", what)
	}

	var sb strings.Builder
	for i, call := range log {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, call.SQL)
		if len(call.Args) > 0 {
			fmt.Fprintf(&sb, "     Args: %v\n", call.Args)
		}
	}
	return sb.String()
}
