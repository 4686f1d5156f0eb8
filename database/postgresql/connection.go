// Package postgresql opens PostgreSQL connections through the pgx driver.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/internal/sqlconn"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

var (
	openPostgresDB = func(cfg *pgx.ConnConfig) *sql.DB {
		return stdlib.OpenDB(*cfg)
	}
	pingPostgresDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// quoteDSN quotes a keyword/value DSN value following libpq rules.
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	needsQuoting := false
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-' {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return value
	}

	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}

func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	parts := []string{
		"host=" + quoteDSN(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + quoteDSN(cfg.Username),
		"password=" + quoteDSN(cfg.Password),
		"dbname=" + quoteDSN(cfg.Database),
	}
	if cfg.SSLMode != "" {
		parts = append(parts, "sslmode="+quoteDSN(cfg.SSLMode))
	}
	return strings.Join(parts, " ")
}

// NewConnection opens and pings a PostgreSQL pool.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Connection, error) {
	pgxConfig, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	db := openPostgresDB(pgxConfig)
	sqlconn.ConfigurePool(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingPostgresDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close PostgreSQL connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	log.Info().
		Str("host", pgxConfig.Host).
		Int("port", int(pgxConfig.Port)).
		Str("database", pgxConfig.Database).
		Msg("Connected to PostgreSQL database")

	return sqlconn.New(db, types.PostgreSQL, log), nil
}
