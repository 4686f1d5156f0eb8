package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the root configuration loaded by Load.
type Config struct {
	App      AppConfig      `koanf:"app" json:"app" yaml:"app"`
	Log      LogConfig      `koanf:"log" json:"log" yaml:"log"`
	Database DatabaseConfig `koanf:"database" json:"database" yaml:"database"`

	k *koanf.Koanf
}

// AppConfig identifies the running application.
type AppConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name"`
	Env  string `koanf:"env" json:"env" yaml:"env"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// DatabaseConfig holds database connection settings.
//
// For sqlite, Database is the file path (":memory:" for an in-process database).
type DatabaseConfig struct {
	Type     string `koanf:"type" json:"type" yaml:"type"`
	Host     string `koanf:"host" json:"host" yaml:"host"`
	Port     int    `koanf:"port" json:"port" yaml:"port"`
	Database string `koanf:"database" json:"database" yaml:"database"`
	Username string `koanf:"username" json:"username" yaml:"username"`
	Password string `koanf:"password" json:"password" yaml:"password"`
	SSLMode  string `koanf:"sslmode" json:"sslmode" yaml:"sslmode"`

	ConnectionString string `koanf:"connectionstring" json:"connectionstring" yaml:"connectionstring"`

	Pool   PoolConfig   `koanf:"pool" json:"pool" yaml:"pool"`
	Query  QueryConfig  `koanf:"query" json:"query" yaml:"query"`
	Oracle OracleConfig `koanf:"oracle" json:"oracle" yaml:"oracle"`
}

// PoolConfig holds database/sql pool settings.
type PoolConfig struct {
	Max      PoolMaxConfig  `koanf:"max" json:"max" yaml:"max"`
	Idle     PoolIdleConfig `koanf:"idle" json:"idle" yaml:"idle"`
	Lifetime LifetimeConfig `koanf:"lifetime" json:"lifetime" yaml:"lifetime"`
}

// PoolMaxConfig holds maximum connections settings.
type PoolMaxConfig struct {
	Connections int `koanf:"connections" json:"connections" yaml:"connections"`
}

// PoolIdleConfig holds idle connections settings.
type PoolIdleConfig struct {
	Connections int           `koanf:"connections" json:"connections" yaml:"connections"`
	Time        time.Duration `koanf:"time" json:"time" yaml:"time"`
}

// LifetimeConfig holds maximum lifetime settings for connections.
type LifetimeConfig struct {
	Max time.Duration `koanf:"max" json:"max" yaml:"max"`
}

// QueryConfig holds statement logging and slow query detection settings.
type QueryConfig struct {
	Slow SlowQueryConfig `koanf:"slow" json:"slow" yaml:"slow"`
	Log  QueryLogConfig  `koanf:"log" json:"log" yaml:"log"`
}

// SlowQueryConfig holds settings for slow query detection.
type SlowQueryConfig struct {
	Threshold time.Duration `koanf:"threshold" json:"threshold" yaml:"threshold"`
	Enabled   bool          `koanf:"enabled" json:"enabled" yaml:"enabled"`
}

// QueryLogConfig holds settings for statement logging.
type QueryLogConfig struct {
	// Parameters enables logging of bound arguments.
	Parameters bool `koanf:"parameters" json:"parameters" yaml:"parameters"`
	MaxLength  int  `koanf:"max" json:"max" yaml:"max"`
}

// OracleConfig holds Oracle-specific settings.
type OracleConfig struct {
	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`
}

// ServiceConfig holds Oracle service connection settings.
type ServiceConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name"`
	SID  string `koanf:"sid" json:"sid" yaml:"sid"`
}

// String returns a raw value by dotted key, e.g. "app.name".
func (c *Config) String(key string) string {
	if c.k == nil {
		return ""
	}
	return c.k.String(key)
}
