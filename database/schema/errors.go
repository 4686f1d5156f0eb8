package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema matches every *SchemaError with errors.Is.
	ErrSchema = errors.New("invalid schema")

	// ErrValidation matches every *ValidationError with errors.Is.
	ErrValidation = errors.New("validation failed")
)

// SchemaError reports an invalid schema definition. It is raised while
// schemas are declared and is not meant to be recovered from.
type SchemaError struct {
	Table  string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %q: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("schema %q: field %q: %s", e.Table, e.Field, e.Reason)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ValidationError reports an input value that could not be accepted for a field.
type ValidationError struct {
	Table  string
	Field  string
	Reason string
	Value  any
	Err    error
}

// NewValidationError creates a ValidationError for use in validation hooks.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	switch {
	case e.Table != "" && e.Field != "":
		return fmt.Sprintf("validation failed for %s.%s: %s", e.Table, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	default:
		return "validation failed: " + e.Reason
	}
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }
