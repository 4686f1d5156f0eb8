// Package oracle opens Oracle connections through the pure Go go-ora driver.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/internal/sqlconn"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

var (
	openOracleDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("oracle", dsn)
	}
	pingOracleDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// buildDSN prefers the service name, then the SID, then the database name.
func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	switch {
	case cfg.Oracle.Service.Name != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Oracle.Service.Name, cfg.Username, cfg.Password, nil)
	case cfg.Oracle.Service.SID != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, "", cfg.Username, cfg.Password,
			map[string]string{"SID": cfg.Oracle.Service.SID})
	default:
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, nil)
	}
}

// NewConnection opens and pings an Oracle pool.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Connection, error) {
	db, err := openOracleDB(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle connection: %w", err)
	}
	sqlconn.ConfigurePool(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingOracleDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close Oracle connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	ev := log.Info().Str("host", cfg.Host).Int("port", cfg.Port)
	switch {
	case cfg.Oracle.Service.Name != "":
		ev = ev.Str("service_name", cfg.Oracle.Service.Name)
	case cfg.Oracle.Service.SID != "":
		ev = ev.Str("sid", cfg.Oracle.Service.SID)
	default:
		ev = ev.Str("database", cfg.Database)
	}
	ev.Msg("Connected to Oracle database")

	return sqlconn.New(db, types.Oracle, log), nil
}
