package tracking

import (
	"context"
	"database/sql"
	"time"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

// Connection wraps a types.Interface and tracks every statement it runs.
type Connection struct {
	conn     types.Interface
	logger   logger.Logger
	vendor   string
	settings Settings
}

var _ types.Interface = (*Connection)(nil)

// NewConnection wraps conn. The vendor is taken from conn.DatabaseType().
func NewConnection(conn types.Interface, log logger.Logger, cfg *config.DatabaseConfig) *Connection {
	return &Connection{
		conn:     conn,
		logger:   log,
		vendor:   conn.DatabaseType(),
		settings: NewSettings(cfg),
	}
}

// Unwrap returns the tracked connection.
func (c *Connection) Unwrap() types.Interface { return c.conn }

func (c *Connection) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := c.conn.Query(ctx, query, args...)
	c.track(ctx, query, args, start, 0, err)
	return rows, err
}

func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := c.conn.Exec(ctx, query, args...)
	c.track(ctx, query, args, start, extractRowsAffected(result, err), err)
	return result, err
}

// Begin starts a transaction whose statements are tracked too.
func (c *Connection) Begin(ctx context.Context) (types.Tx, error) {
	start := time.Now()
	tx, err := c.conn.Begin(ctx)
	c.track(ctx, "BEGIN", nil, start, 0, err)
	if err != nil {
		return nil, err
	}
	return NewTransaction(tx, c.logger, c.vendor, c.settings), nil
}

func (c *Connection) Health(ctx context.Context) error { return c.conn.Health(ctx) }

func (c *Connection) Stats() (map[string]any, error) { return c.conn.Stats() }

func (c *Connection) Close() error { return c.conn.Close() }

func (c *Connection) DatabaseType() string { return c.conn.DatabaseType() }

func (c *Connection) track(ctx context.Context, query string, args []any, start time.Time, rowsAffected int64, err error) {
	TrackDBOperation(ctx, &Context{Logger: c.logger, Vendor: c.vendor, Settings: c.settings},
		query, args, start, rowsAffected, err)
}

// Transaction wraps a types.Tx and tracks its statements, commit and rollback.
type Transaction struct {
	tx       types.Tx
	logger   logger.Logger
	vendor   string
	settings Settings
}

var _ types.Tx = (*Transaction)(nil)

// NewTransaction wraps tx.
func NewTransaction(tx types.Tx, log logger.Logger, vendor string, settings Settings) *Transaction {
	return &Transaction{tx: tx, logger: log, vendor: vendor, settings: settings}
}

func (t *Transaction) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.Query(ctx, query, args...)
	t.track(ctx, query, args, start, 0, err)
	return rows, err
}

func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.tx.Exec(ctx, query, args...)
	t.track(ctx, query, args, start, extractRowsAffected(result, err), err)
	return result, err
}

func (t *Transaction) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.track(context.Background(), "COMMIT", nil, start, 0, err)
	return err
}

func (t *Transaction) Rollback() error {
	start := time.Now()
	err := t.tx.Rollback()
	t.track(context.Background(), "ROLLBACK", nil, start, 0, err)
	return err
}

func (t *Transaction) DatabaseType() string { return t.vendor }

func (t *Transaction) track(ctx context.Context, query string, args []any, start time.Time, rowsAffected int64, err error) {
	TrackDBOperation(ctx, &Context{Logger: t.logger, Vendor: t.vendor, Settings: t.settings},
		query, args, start, rowsAffected, err)
}
