// Package mysql opens MySQL connections through go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/internal/sqlconn"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

var (
	openMySQLDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("mysql", dsn)
	}
	pingMySQLDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// buildDSN formats a driver DSN. parseTime is always on so DATETIME
// columns scan as time.Time.
func buildDSN(cfg *config.DatabaseConfig) (string, error) {
	if cfg.ConnectionString != "" {
		parsed, err := mysql.ParseDSN(cfg.ConnectionString)
		if err != nil {
			return "", err
		}
		parsed.ParseTime = true
		return parsed.FormatDSN(), nil
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

// NewConnection opens and pings a MySQL pool.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Connection, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MySQL connection string: %w", err)
	}

	db, err := openMySQLDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	sqlconn.ConfigurePool(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingMySQLDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close MySQL connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to MySQL database")

	return sqlconn.New(db, types.MySQL, log), nil
}
