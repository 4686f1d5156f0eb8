package schema

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Mode selects how absent fields are treated during validation.
type Mode int

const (
	// ModeInsert applies declared defaults to absent fields.
	ModeInsert Mode = iota
	// ModeUpdate leaves absent fields out so an update only touches what was sent.
	ModeUpdate
)

// Hook extends validation for one schema. It receives the raw input and the
// result of the previous step and may inspect or replace both the primary key
// and the changeset.
type Hook func(raw map[string]any, pk any, cs *Changeset) (any, *Changeset, error)

// Validate runs the base validation with insert semantics followed by the
// schema's hooks. It returns the primary key value when the input carries one.
func Validate(s *Schema, raw map[string]any) (any, *Changeset, error) {
	return s.validate(raw, ModeInsert)
}

// ValidateUpdate is Validate with update semantics: defaults are not applied.
func ValidateUpdate(s *Schema, raw map[string]any) (any, *Changeset, error) {
	return s.validate(raw, ModeUpdate)
}

func (s *Schema) validate(raw map[string]any, mode Mode) (any, *Changeset, error) {
	pk, cs, err := ValidateBase(s, raw, mode)
	if err != nil {
		return nil, nil, err
	}

	for i, hook := range s.hooks {
		pk, cs, err = hook(raw, pk, cs)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) && verr.Table == "" {
				verr.Table = s.table
			}
			return nil, nil, err
		}
		if cs == nil || cs.schema != s {
			return nil, nil, &ValidationError{
				Table:  s.table,
				Reason: fmt.Sprintf("validation hook %d returned a changeset for another schema", i),
			}
		}
	}

	return pk, cs, nil
}

// ValidateBase is the step every validation runs first: it walks the fields
// in declaration order, coerces present values, applies defaults on insert
// and checks field rules. Keys of raw that are not field names are ignored.
func ValidateBase(s *Schema, raw map[string]any, mode Mode) (any, *Changeset, error) {
	cs := NewChangeset(s)
	var pk any

	for _, f := range s.fields {
		value, present := raw[f.name]
		if !present {
			if mode == ModeInsert && f.hasDefault {
				def, err := defaultValue(f)
				if err != nil {
					return nil, nil, err
				}
				cs.put(f.column, def)
				if f.pk {
					pk = def
				}
			}
			continue
		}

		coerced, err := coerceField(f, value)
		if err != nil {
			return nil, nil, err
		}

		if err := s.checkValue(f, coerced); err != nil {
			return nil, nil, err
		}

		cs.put(f.column, coerced)
		if f.pk {
			pk = coerced
		}
	}

	return pk, cs, nil
}

func defaultValue(f Field) (any, error) {
	if f.defFn == nil {
		return f.def, nil
	}
	return coerceField(f, f.defFn())
}

func (s *Schema) checkValue(f Field, value any) error {
	if f.rules == "" || value == nil {
		return nil
	}
	err := s.rules.Var(value, f.rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Table: s.table, Field: f.name, Reason: ruleMessage(fieldErrs[0]), Value: value, Err: err}
	}
	return &ValidationError{Table: s.table, Field: f.name, Reason: err.Error(), Value: value, Err: err}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s long", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
