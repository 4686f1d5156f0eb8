//go:build integration

// Package containers starts throwaway databases for integration tests.
// Tests are skipped when Docker is not reachable.
package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/types"
)

// PostgreSQLOptions configures StartPostgreSQL. Zero values use the defaults.
type PostgreSQLOptions struct {
	ImageTag       string        // "17-alpine"
	Username       string        // "testuser"
	Password       string        // "testpass"
	Database       string        // "testdb"
	StartupTimeout time.Duration // 60s
	// InitScripts are SQL files run once the server is up.
	InitScripts []string
}

func (o *PostgreSQLOptions) withDefaults() PostgreSQLOptions {
	opts := PostgreSQLOptions{}
	if o != nil {
		opts = *o
	}
	if opts.ImageTag == "" {
		opts.ImageTag = "17-alpine"
	}
	if opts.Username == "" {
		opts.Username = "testuser"
	}
	if opts.Password == "" {
		opts.Password = "testpass"
	}
	if opts.Database == "" {
		opts.Database = "testdb"
	}
	if opts.StartupTimeout <= 0 {
		opts.StartupTimeout = 60 * time.Second
	}
	return opts
}

// PostgreSQL is a running PostgreSQL container.
type PostgreSQL struct {
	container *postgres.PostgresContainer
	config    *config.DatabaseConfig
}

// StartPostgreSQL starts a PostgreSQL container and terminates it when the
// test ends. The test is skipped when Docker is unavailable.
func StartPostgreSQL(ctx context.Context, t *testing.T, o *PostgreSQLOptions) *PostgreSQL {
	t.Helper()

	if !dockerAvailable(ctx) {
		t.Skip("Docker is not available, skipping integration test")
	}
	opts := o.withDefaults()

	customizers := []testcontainers.ContainerCustomizer{
		postgres.WithDatabase(opts.Database),
		postgres.WithUsername(opts.Username),
		postgres.WithPassword(opts.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(opts.StartupTimeout),
		),
	}
	if len(opts.InitScripts) > 0 {
		customizers = append(customizers, postgres.WithInitScripts(opts.InitScripts...))
	}

	container, err := postgres.Run(ctx, "postgres:"+opts.ImageTag, customizers...)
	if err != nil {
		t.Fatalf("start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate PostgreSQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("PostgreSQL container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("PostgreSQL container port: %v", err)
	}

	t.Logf("PostgreSQL container listening on %s:%s", host, port.Port())

	return &PostgreSQL{
		container: container,
		config: &config.DatabaseConfig{
			Type:     types.PostgreSQL,
			Host:     host,
			Port:     port.Int(),
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
			SSLMode:  "disable",
		},
	}
}

// Config returns a database configuration pointing at the container. Each
// call returns a fresh copy.
func (p *PostgreSQL) Config() *config.DatabaseConfig {
	cfg := *p.config
	return &cfg
}

// Exec runs SQL directly inside the container with psql, for setup that
// should not go through the code under test.
func (p *PostgreSQL) Exec(ctx context.Context, statement string) error {
	code, _, err := p.container.Exec(ctx, []string{
		"psql", "-U", p.config.Username, "-d", p.config.Database, "-v", "ON_ERROR_STOP=1", "-c", statement,
	})
	if err != nil {
		return fmt.Errorf("psql: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("psql exited with code %d", code)
	}
	return nil
}
