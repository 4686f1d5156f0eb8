// Package sqlite opens SQLite databases through mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/internal/sqlconn"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

// DriverName is the database/sql driver used for SQLite.
const DriverName = "sqlite3"

// Memory is the DSN of a private in-memory database.
const Memory = ":memory:"

var openSQLiteDB = func(dsn string) (*sql.DB, error) {
	return sql.Open(DriverName, dsn)
}

func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	return cfg.Database
}

// isMemory reports whether every pooled connection would get its own
// empty database.
func isMemory(dsn string) bool {
	return dsn == Memory || (strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, "cache=shared"))
}

// NewConnection opens a SQLite database. In-memory databases are limited to
// one connection so every statement sees the same data.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Connection, error) {
	dsn := buildDSN(cfg)
	if dsn == "" {
		return nil, fmt.Errorf("failed to open SQLite database: no database path configured")
	}

	db, err := openSQLiteDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	sqlconn.ConfigurePool(db, cfg)
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close SQLite database after ping failure")
		}
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Info().Str("database", dsn).Msg("Opened SQLite database")

	return sqlconn.New(db, types.SQLite, log), nil
}
