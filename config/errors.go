package config

import (
	"fmt"
	"strings"
)

// ConfigError describes a configuration problem with actionable guidance.
//
//nolint:revive // ConfigError reads better than Error at call sites
type ConfigError struct {
	Category string // "missing" or "invalid"
	Field    string // dotted config path, e.g. "database.host"
	Message  string
	Action   string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	for _, part := range []string{e.Field, e.Message, e.Action} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// NewMissingFieldError creates an error for a required missing field.
func NewMissingFieldError(field string) *ConfigError {
	envVar := EnvPrefix + strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
	return &ConfigError{
		Category: "missing",
		Field:    field,
		Message:  "required",
		Action:   fmt.Sprintf("set %s env var or add %s to config.yaml", envVar, field),
	}
}

// NewInvalidFieldError creates an error for an invalid value.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
	}
	if len(validOptions) > 0 {
		err.Action = fmt.Sprintf("must be one of: %s", strings.Join(validOptions, ", "))
	}
	return err
}
