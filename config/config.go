// Package config loads layered configuration with koanf: built-in defaults,
// then config.yaml, then config.<env>.yaml, then DATAMAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped to keys.
const EnvPrefix = "DATAMAP_"

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	defaultMaxQueryLength     = 1000
)

// Load reads configuration from the working directory and the environment.
// Missing YAML files are skipped.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadOptionalFile(k, "config.yaml"); err != nil {
		return nil, err
	}

	if appEnv := k.String("app.env"); appEnv != "" {
		if err := loadOptionalFile(k, fmt.Sprintf("config.%s.yaml", appEnv)); err != nil {
			return nil, err
		}
	}

	return finish(k)
}

// LoadFromBytes reads configuration from an in-memory YAML document layered
// over the defaults and under the environment.
func LoadFromBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey maps DATAMAP_DATABASE_POOL_MAX_CONNECTIONS to database.pool.max.connections.
func envKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	err := k.Load(file.Provider(path), yaml.Parser())
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name": "datamap",
		"app.env":  EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		// No connection defaults: the database is only enabled when configured.
		"database.pool.max.connections":  25,
		"database.pool.idle.connections": 2,
		"database.pool.idle.time":        5 * time.Minute,
		"database.pool.lifetime.max":     30 * time.Minute,
		"database.query.slow.enabled":    true,
		"database.query.slow.threshold":  defaultSlowQueryThreshold,
		"database.query.log.max":         defaultMaxQueryLength,
		"database.query.log.parameters":  false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
