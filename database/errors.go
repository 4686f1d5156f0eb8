package database

import (
	"github.com/gaborage/go-datamap/database/schema"
	"github.com/gaborage/go-datamap/database/types"
)

// Sentinel errors, matchable with errors.Is.
var (
	ErrSchema       = schema.ErrSchema
	ErrValidation   = schema.ErrValidation
	ErrBuilder      = types.ErrBuilder
	ErrNotFound     = types.ErrNotFound
	ErrMultipleRows = types.ErrMultipleRows
	ErrExecution    = types.ErrExecution
)

// Error types, matchable with errors.As.
type (
	SchemaError        = schema.SchemaError
	ValidationError    = schema.ValidationError
	UnknownColumnError = types.UnknownColumnError
	BuilderError       = types.BuilderError
	NotFoundError      = types.NotFoundError
	MultipleRowsError  = types.MultipleRowsError
	ExecutionError     = types.ExecutionError
)
