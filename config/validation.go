package config

import (
	"fmt"
	"slices"
)

// Database type constants
const (
	PostgreSQL = "postgresql"
	Oracle     = "oracle"
	MySQL      = "mysql"
	SQLite     = "sqlite"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validDatabaseTypes = []string{PostgreSQL, Oracle, MySQL, SQLite}
	validEnvs          = []string{EnvDevelopment, EnvStaging, EnvProduction}
	validLogLevels     = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
)

// Validate checks cfg and fills zero-valued statement tracking settings.
func Validate(cfg *Config) error {
	if !slices.Contains(validEnvs, cfg.App.Env) {
		return NewInvalidFieldError("app.env", fmt.Sprintf("unknown environment %q", cfg.App.Env), validEnvs)
	}

	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		return NewInvalidFieldError("log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level), validLogLevels)
	}

	if err := ValidateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	return nil
}

// IsDatabaseConfigured reports whether any connection setting was provided.
func IsDatabaseConfigured(cfg *DatabaseConfig) bool {
	return cfg.ConnectionString != "" || cfg.Host != "" || cfg.Type != ""
}

// ValidateDatabase checks connection settings. An unconfigured database is valid.
func ValidateDatabase(cfg *DatabaseConfig) error {
	if !IsDatabaseConfigured(cfg) {
		return nil
	}

	if cfg.Type == "" {
		return NewMissingFieldError("database.type")
	}
	if !slices.Contains(validDatabaseTypes, cfg.Type) {
		return NewInvalidFieldError("database.type", fmt.Sprintf("unsupported database type %q", cfg.Type), validDatabaseTypes)
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return NewInvalidFieldError("database.port", fmt.Sprintf("invalid port %d", cfg.Port), nil)
	}

	if cfg.ConnectionString == "" {
		if err := validateConnectionFields(cfg); err != nil {
			return err
		}
	}

	return applyQueryDefaults(cfg)
}

func validateConnectionFields(cfg *DatabaseConfig) error {
	if cfg.Type == SQLite {
		if cfg.Database == "" {
			return NewMissingFieldError("database.database")
		}
		return nil
	}

	if cfg.Host == "" {
		return NewMissingFieldError("database.host")
	}
	if cfg.Port == 0 {
		return NewMissingFieldError("database.port")
	}
	if cfg.Type == Oracle {
		if cfg.Database == "" && cfg.Oracle.Service.Name == "" && cfg.Oracle.Service.SID == "" {
			return NewMissingFieldError("database.oracle.service.name")
		}
	} else if cfg.Database == "" {
		return NewMissingFieldError("database.database")
	}
	if cfg.Username == "" {
		return NewMissingFieldError("database.username")
	}
	return nil
}

func applyQueryDefaults(cfg *DatabaseConfig) error {
	if cfg.Pool.Max.Connections < 0 {
		return NewInvalidFieldError("database.pool.max.connections", "must be zero or positive", nil)
	}
	if cfg.Pool.Idle.Connections < 0 {
		return NewInvalidFieldError("database.pool.idle.connections", "must be zero or positive", nil)
	}

	if cfg.Query.Log.MaxLength < 0 {
		return NewInvalidFieldError("database.query.log.max", "must be zero or positive", nil)
	}
	if cfg.Query.Log.MaxLength == 0 {
		cfg.Query.Log.MaxLength = defaultMaxQueryLength
	}

	if cfg.Query.Slow.Threshold < 0 {
		return NewInvalidFieldError("database.query.slow.threshold", "must be zero or positive", nil)
	}
	if cfg.Query.Slow.Threshold == 0 {
		cfg.Query.Slow.Threshold = defaultSlowQueryThreshold
	}

	return nil
}
