package database

import (
	"fmt"
	"slices"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/mysql"
	"github.com/gaborage/go-datamap/database/oracle"
	"github.com/gaborage/go-datamap/database/postgresql"
	"github.com/gaborage/go-datamap/database/sqlite"
	"github.com/gaborage/go-datamap/logger"
)

var supportedDatabaseTypes = []string{PostgreSQL, Oracle, MySQL, SQLite}

// NewConnection opens the connection selected by cfg.Type and wraps it with
// statement tracking. If the driver fails to initialize, that error is returned.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	if err := ValidateDatabaseType(cfg.Type); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	conn, err := openConnection(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewTrackedConnection(conn, log, cfg), nil
}

func openConnection(cfg *config.DatabaseConfig, log logger.Logger) (Interface, error) {
	switch cfg.Type {
	case PostgreSQL:
		return postgresql.NewConnection(cfg, log)
	case Oracle:
		return oracle.NewConnection(cfg, log)
	case MySQL:
		return mysql.NewConnection(cfg, log)
	default:
		return sqlite.NewConnection(cfg, log)
	}
}

// Open connects according to cfg and returns a DB ready for queries.
func Open(cfg *config.DatabaseConfig, log logger.Logger) (*DB, error) {
	conn, err := NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ValidateDatabaseType returns nil if dbType is one of the supported database types.
func ValidateDatabaseType(dbType string) error {
	if !slices.Contains(supportedDatabaseTypes, dbType) {
		return fmt.Errorf("unsupported database type: %s (supported: %v)", dbType, supportedDatabaseTypes)
	}
	return nil
}

// GetSupportedDatabaseTypes returns a list of supported database types
func GetSupportedDatabaseTypes() []string {
	return slices.Clone(supportedDatabaseTypes)
}
