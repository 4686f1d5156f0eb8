// Package tracking logs, traces and measures every statement sent to a
// database connection: debug logs for normal statements, warnings for slow
// ones, errors for failures, and an OpenTelemetry span and metrics for each.
package tracking

import (
	"time"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/logger"
)

const (
	// DefaultSlowQueryThreshold is used when the configuration sets none.
	DefaultSlowQueryThreshold = 200 * time.Millisecond
	// DefaultMaxQueryLength bounds logged statements and arguments.
	DefaultMaxQueryLength = 1000
)

// Settings controls statement logging.
type Settings struct {
	slowQueryThreshold time.Duration
	slowQueryEnabled   bool
	maxQueryLength     int
	logQueryParameters bool
}

// Context is what TrackDBOperation needs to know about a connection.
type Context struct {
	Logger   logger.Logger
	Vendor   string
	Settings Settings
}

// NewSettings reads the query section of cfg. A nil cfg or non-positive
// values fall back to the defaults; slow query detection is on by default.
func NewSettings(cfg *config.DatabaseConfig) Settings {
	settings := Settings{
		slowQueryThreshold: DefaultSlowQueryThreshold,
		slowQueryEnabled:   true,
		maxQueryLength:     DefaultMaxQueryLength,
	}
	if cfg == nil {
		return settings
	}

	if cfg.Query.Slow.Threshold > 0 {
		settings.slowQueryThreshold = cfg.Query.Slow.Threshold
	}
	settings.slowQueryEnabled = cfg.Query.Slow.Enabled
	if cfg.Query.Log.MaxLength > 0 {
		settings.maxQueryLength = cfg.Query.Log.MaxLength
	}
	settings.logQueryParameters = cfg.Query.Log.Parameters

	return settings
}

// SlowQueryThreshold returns the duration above which a statement is logged as slow.
func (s Settings) SlowQueryThreshold() time.Duration { return s.slowQueryThreshold }

// SlowQueryEnabled reports whether slow statements are logged at warn level.
func (s Settings) SlowQueryEnabled() bool { return s.slowQueryEnabled }

// MaxQueryLength returns the maximum logged statement length in runes.
func (s Settings) MaxQueryLength() int { return s.maxQueryLength }

// LogQueryParameters reports whether bound arguments are logged.
func (s Settings) LogQueryParameters() bool { return s.logQueryParameters }
