// Package sqlconn adapts a *sql.DB to types.Interface. Every vendor package
// opens its driver and hands the pool to New.
package sqlconn

import (
	"context"
	"database/sql"
	"time"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

// HealthTimeout bounds Health.
const HealthTimeout = 5 * time.Second

// Connection is a pooled database handle for one vendor.
type Connection struct {
	db     *sql.DB
	vendor string
	logger logger.Logger
}

var _ types.Interface = (*Connection)(nil)

// New wraps db. log may be nil.
func New(db *sql.DB, vendor string, log logger.Logger) *Connection {
	if log == nil {
		log = logger.Nop()
	}
	return &Connection{db: db, vendor: vendor, logger: log}
}

// ConfigurePool applies the pool section of cfg. Zero values keep the
// database/sql defaults.
func ConfigurePool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.Pool.Max.Connections > 0 {
		db.SetMaxOpenConns(cfg.Pool.Max.Connections)
	}
	if cfg.Pool.Idle.Connections > 0 {
		db.SetMaxIdleConns(cfg.Pool.Idle.Connections)
	}
	if cfg.Pool.Idle.Time > 0 {
		db.SetConnMaxIdleTime(cfg.Pool.Idle.Time)
	}
	if cfg.Pool.Lifetime.Max > 0 {
		db.SetConnMaxLifetime(cfg.Pool.Lifetime.Max)
	}
}

// DB returns the underlying pool.
func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Begin starts a transaction. The caller commits or rolls it back.
func (c *Connection) Begin(ctx context.Context) (types.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Transaction{tx: tx, vendor: c.vendor}, nil
}

// Health pings the database.
func (c *Connection) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()
	return c.db.PingContext(ctx)
}

// Stats reports database/sql pool statistics.
func (c *Connection) Stats() (map[string]any, error) {
	stats := c.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}

func (c *Connection) Close() error {
	c.logger.Info().Str("vendor", c.vendor).Msg("Closing database connection")
	return c.db.Close()
}

func (c *Connection) DatabaseType() string { return c.vendor }

// Transaction adapts *sql.Tx to types.Tx.
type Transaction struct {
	tx     *sql.Tx
	vendor string
}

var _ types.Tx = (*Transaction)(nil)

// NewTransaction wraps tx.
func NewTransaction(tx *sql.Tx, vendor string) *Transaction {
	return &Transaction{tx: tx, vendor: vendor}
}

func (t *Transaction) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Transaction) Commit() error { return t.tx.Commit() }

func (t *Transaction) Rollback() error { return t.tx.Rollback() }

func (t *Transaction) DatabaseType() string { return t.vendor }
