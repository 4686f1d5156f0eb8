package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single-row query matches nothing.
	ErrNotFound = errors.New("no rows found")

	// ErrMultipleRows is returned when a single-row query matches more than one row.
	ErrMultipleRows = errors.New("query matched more than one row")

	// ErrBuilder matches every *BuilderError and *UnknownColumnError.
	ErrBuilder = errors.New("invalid query")

	// ErrExecution matches every *ExecutionError.
	ErrExecution = errors.New("statement execution failed")
)

// UnknownColumnError reports a column that does not belong to any schema
// in scope for the query.
type UnknownColumnError struct {
	Column string
	Table  string
	// Scope lists the tables the query can reference.
	Scope []string
}

func (e *UnknownColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("unknown column %q on table %q (in scope: %v)", e.Column, e.Table, e.Scope)
	}
	return fmt.Sprintf("unknown column %q (in scope: %v)", e.Column, e.Scope)
}

// Is reports whether target is ErrBuilder.
func (e *UnknownColumnError) Is(target error) bool { return target == ErrBuilder }

// BuilderError reports misuse of the query builder.
type BuilderError struct {
	Op     string
	Reason string
}

func (e *BuilderError) Error() string {
	if e.Op == "" {
		return "query builder: " + e.Reason
	}
	return fmt.Sprintf("query builder: %s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrBuilder.
func (e *BuilderError) Is(target error) bool { return target == ErrBuilder }

// NotFoundError is returned when a single-row query matched nothing.
type NotFoundError struct {
	Table string
	SQL   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no rows found in %q", ErrNotFound.Error(), e.Table)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MultipleRowsError is returned when a single-row query matched more than one row.
type MultipleRowsError struct {
	Table string
	SQL   string
}

func (e *MultipleRowsError) Error() string {
	return fmt.Sprintf("%s: table %q, query %q", ErrMultipleRows.Error(), e.Table, e.SQL)
}

// Is reports whether target is ErrMultipleRows.
func (e *MultipleRowsError) Is(target error) bool { return target == ErrMultipleRows }

// ExecutionError wraps a failure reported by the connection. It is never retried.
type ExecutionError struct {
	SQL   string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.SQL, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrExecution.
func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }
