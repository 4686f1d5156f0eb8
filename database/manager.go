package database

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/logger"
)

const defaultManagerSize = 16

// ConfigSource resolves the configuration of a named database.
type ConfigSource interface {
	DatabaseConfig(ctx context.Context, name string) (*config.DatabaseConfig, error)
}

// StaticConfigs is a ConfigSource backed by a fixed map.
type StaticConfigs map[string]*config.DatabaseConfig

func (s StaticConfigs) DatabaseConfig(_ context.Context, name string) (*config.DatabaseConfig, error) {
	cfg, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("no database configured under %q", name)
	}
	return cfg, nil
}

// Connector opens a connection from configuration. NewConnection is the default.
type Connector func(*config.DatabaseConfig, logger.Logger) (Interface, error)

// Manager hands out DB handles for named databases, so several independent
// pools can live in one process. Connections open lazily on first use;
// concurrent first uses of a name share one attempt. When more than MaxSize
// names are open, the least recently used connection is closed.
type Manager struct {
	source    ConfigSource
	connector Connector
	logger    logger.Logger

	mu      sync.Mutex
	entries map[string]*managerEntry
	lru     *list.List
	maxSize int

	sfg singleflight.Group
}

type managerEntry struct {
	db       *DB
	conn     Interface
	element  *list.Element
	lastUsed time.Time
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	MaxSize   int       // open connections kept; 0 means 16
	Connector Connector // nil means NewConnection
}

// NewManager creates a Manager over source.
func NewManager(source ConfigSource, log logger.Logger, opts ManagerOptions) *Manager {
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultManagerSize
	}
	if opts.Connector == nil {
		opts.Connector = NewConnection
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		source:    source,
		connector: opts.Connector,
		logger:    log,
		entries:   make(map[string]*managerEntry),
		lru:       list.New(),
		maxSize:   opts.MaxSize,
	}
}

// Get returns the DB for name, opening its connection if needed.
func (m *Manager) Get(ctx context.Context, name string) (*DB, error) {
	if db := m.existing(name); db != nil {
		return db, nil
	}

	result, err, _ := m.sfg.Do(name, func() (any, error) {
		if db := m.existing(name); db != nil {
			return db, nil
		}
		return m.open(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return result.(*DB), nil
}

func (m *Manager) existing(name string) *DB {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[name]
	if !ok {
		return nil
	}
	entry.lastUsed = time.Now()
	m.lru.MoveToFront(entry.element)
	return entry.db
}

func (m *Manager) open(ctx context.Context, name string) (*DB, error) {
	cfg, err := m.source.DatabaseConfig(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve database %q: %w", name, err)
	}
	conn, err := m.connector(cfg, m.logger)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictIfNeeded()
	entry := &managerEntry{
		db:       New(conn),
		conn:     conn,
		element:  m.lru.PushFront(name),
		lastUsed: time.Now(),
	}
	m.entries[name] = entry

	m.logger.Info().
		Str("name", name).
		Str("vendor", cfg.Type).
		Msg("Opened database connection")
	return entry.db, nil
}

func (m *Manager) evictIfNeeded() {
	if len(m.entries) < m.maxSize {
		return
	}
	oldest := m.lru.Back()
	if oldest == nil {
		return
	}
	name := oldest.Value.(string)
	m.closeEntry(name, "Evicted least recently used database connection")
}

// closeEntry must be called with m.mu held.
func (m *Manager) closeEntry(name, reason string) error {
	entry := m.entries[name]
	delete(m.entries, name)
	m.lru.Remove(entry.element)

	if err := entry.conn.Close(); err != nil {
		m.logger.Error().Err(err).Str("name", name).Msg("Error closing database connection")
		return fmt.Errorf("close database %q: %w", name, err)
	}
	m.logger.Debug().Str("name", name).Msg(reason)
	return nil
}

// Release closes the connection for name, if open.
func (m *Manager) Release(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[name]; !ok {
		return nil
	}
	return m.closeEntry(name, "Released database connection")
}

// Close closes every open connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name := range m.entries {
		if err := m.closeEntry(name, "Closed database connection"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of open connections.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats reports the open connections and when each was last used.
func (m *Manager) Stats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	connections := make([]map[string]any, 0, len(m.entries))
	for name, entry := range m.entries {
		connections = append(connections, map[string]any{
			"name":      name,
			"vendor":    entry.conn.DatabaseType(),
			"last_used": entry.lastUsed.Format(time.RFC3339),
		})
	}
	return map[string]any{
		"active_connections": len(m.entries),
		"max_connections":    m.maxSize,
		"connections":        connections,
	}
}
