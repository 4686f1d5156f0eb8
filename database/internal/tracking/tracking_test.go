package tracking

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gaborage/go-datamap/config"
	"github.com/gaborage/go-datamap/database/internal/sqlconn"
	"github.com/gaborage/go-datamap/database/types"
	"github.com/gaborage/go-datamap/logger"
)

const (
	selectPersons = "SELECT id, email FROM persons WHERE id = $1"
	updatePersons = "UPDATE persons SET email = $1 WHERE id = $2"
)

func captureLogs(t *testing.T) (logger.Logger, func() []map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", false, nil)
	return log, func() []map[string]any {
		var entries []map[string]any
		scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
		for scanner.Scan() {
			var entry map[string]any
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
			entries = append(entries, entry)
		}
		return entries
	}
}

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return exporter
}

func TestNewSettings(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected Settings
	}{
		{
			name: "nil_config",
			cfg:  nil,
			expected: Settings{
				slowQueryThreshold: DefaultSlowQueryThreshold,
				slowQueryEnabled:   true,
				maxQueryLength:     DefaultMaxQueryLength,
			},
		},
		{
			name: "zero_values_fall_back",
			cfg:  &config.DatabaseConfig{},
			expected: Settings{
				slowQueryThreshold: DefaultSlowQueryThreshold,
				slowQueryEnabled:   false,
				maxQueryLength:     DefaultMaxQueryLength,
			},
		},
		{
			name: "custom",
			cfg: &config.DatabaseConfig{Query: config.QueryConfig{
				Slow: config.SlowQueryConfig{Threshold: time.Second, Enabled: true},
				Log:  config.QueryLogConfig{Parameters: true, MaxLength: 64},
			}},
			expected: Settings{
				slowQueryThreshold: time.Second,
				slowQueryEnabled:   true,
				maxQueryLength:     64,
				logQueryParameters: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewSettings(tt.cfg))
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		value    string
		maxLen   int
		expected string
	}{
		{"SELECT 1", 0, "SELECT 1"},
		{"SELECT 1", 20, "SELECT 1"},
		{"SELECT id FROM persons", 10, "SELECT ..."},
		{"SELECT", 2, "SE"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TruncateString(tt.value, tt.maxLen), tt.value)
	}
}

func TestSanitizeArgs(t *testing.T) {
	assert.Nil(t, SanitizeArgs(nil, 10))

	var out int64
	got := SanitizeArgs([]any{nil, "a very long email address", []byte{1, 2, 3}, sql.Out{Dest: &out}, 42}, 10)
	assert.Equal(t, []any{nil, "a very ...", "<bytes len=3>", "<out>", "42"}, got)
}

func TestExtractDBOperation(t *testing.T) {
	tests := map[string]string{
		"":                                    "query",
		"  SELECT id FROM persons":            "select",
		"insert INTO persons (id) VALUES (1)": "insert",
		"UPDATE persons SET id = 1":           "update",
		"DELETE FROM persons":                 "delete",
		"BEGIN":                               "begin",
		"COMMIT":                              "commit",
		"ROLLBACK":                            "rollback",
		"WITH x AS (SELECT 1) SELECT 1":       "query",
	}
	for query, expected := range tests {
		assert.Equal(t, expected, extractDBOperation(query), query)
	}
}

func TestExtractTableName(t *testing.T) {
	tests := map[string]string{
		selectPersons:                         "persons",
		`INSERT INTO "USERS" (id) VALUES (1)`: "users",
		updatePersons:                         "persons",
		"DELETE FROM `persons` WHERE id = 1":  "persons",
		"BEGIN":                               "",
		"SELECT 1":                            "",
	}
	for query, expected := range tests {
		assert.Equal(t, expected, extractTableName(query), query)
	}
}

func TestNormalizeDBVendor(t *testing.T) {
	assert.Equal(t, "postgresql", normalizeDBVendor("pgx"))
	assert.Equal(t, "postgresql", normalizeDBVendor("PostgreSQL"))
	assert.Equal(t, "sqlite", normalizeDBVendor("sqlite3"))
	assert.Equal(t, "oracle", normalizeDBVendor("oracle"))
	assert.Equal(t, "mysql", normalizeDBVendor("MySQL"))
}

func TestTrackDBOperationLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		start    time.Time
		err      error
		level    string
		message  string
	}{
		{
			name:     "debug_for_normal_statements",
			settings: NewSettings(nil),
			start:    time.Now(),
			level:    "debug",
			message:  "Database operation executed",
		},
		{
			name:     "warn_when_slow",
			settings: NewSettings(nil),
			start:    time.Now().Add(-time.Second),
			level:    "warn",
			message:  "Slow database operation detected",
		},
		{
			name:     "no_row_is_not_a_failure",
			settings: NewSettings(nil),
			start:    time.Now(),
			err:      sql.ErrNoRows,
			level:    "debug",
			message:  "Database operation returned no rows",
		},
		{
			name:     "error_on_failure",
			settings: NewSettings(nil),
			start:    time.Now(),
			err:      errors.New("deadlock detected"),
			level:    "error",
			message:  "Database operation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, entries := captureLogs(t)
			tc := &Context{Logger: log, Vendor: types.PostgreSQL, Settings: tt.settings}

			TrackDBOperation(context.Background(), tc, selectPersons, []any{int64(1)}, tt.start, 0, tt.err)

			logged := entries()
			require.Len(t, logged, 1)
			assert.Equal(t, tt.level, logged[0]["level"])
			assert.True(t, strings.HasPrefix(logged[0]["message"].(string), tt.message))
			assert.Equal(t, selectPersons, logged[0]["query"])
			assert.Equal(t, types.PostgreSQL, logged[0]["vendor"])
			assert.NotContains(t, logged[0], "args")
		})
	}
}

func TestTrackDBOperationLogsParametersWhenEnabled(t *testing.T) {
	log, entries := captureLogs(t)
	settings := NewSettings(&config.DatabaseConfig{Query: config.QueryConfig{
		Log: config.QueryLogConfig{Parameters: true, MaxLength: 20},
	}})

	TrackDBOperation(context.Background(), &Context{Logger: log, Vendor: types.PostgreSQL, Settings: settings},
		updatePersons, []any{"astolfo@waifu.church", int64(1)}, time.Now(), 1, nil)

	logged := entries()
	require.Len(t, logged, 1)
	assert.Equal(t, []any{"astolfo@waifu.church", "1"}, logged[0]["args"])
	assert.Equal(t, float64(1), logged[0]["rows_affected"])
	assert.Equal(t, "UPDATE persons SE...", logged[0]["query"])
}

func TestTrackDBOperationWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		TrackDBOperation(context.Background(), nil, selectPersons, nil, time.Now(), 0, nil)
		TrackDBOperation(context.Background(), &Context{}, selectPersons, nil, time.Now(), 0, nil)
	})
}

func TestTrackDBOperationCreatesSpan(t *testing.T) {
	exporter := recordSpans(t)
	tc := &Context{Logger: logger.Nop(), Vendor: "pgx", Settings: NewSettings(nil)}

	TrackDBOperation(context.Background(), tc, selectPersons, nil, time.Now(), 0, nil)
	TrackDBOperation(context.Background(), tc, updatePersons, nil, time.Now(), 0, errors.New("constraint violation"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "db.select", spans[0].Name)
	attrs := attribute.NewSet(spans[0].Attributes...)
	system, _ := attrs.Value("db.system.name")
	assert.Equal(t, "postgresql", system.AsString())
	table, _ := attrs.Value("db.collection.name")
	assert.Equal(t, "persons", table.AsString())
	operation, _ := attrs.Value("db.operation.name")
	assert.Equal(t, "select", operation.AsString())
	text, _ := attrs.Value("db.query.text")
	assert.Equal(t, selectPersons, text.AsString())
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	assert.Equal(t, "db.update", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "constraint violation", spans[1].Status.Description)
}

func TestTrackDBOperationRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	const deleteSample = "DELETE FROM metrics_sample WHERE id = $1"
	tc := &Context{Logger: logger.Nop(), Vendor: types.PostgreSQL, Settings: NewSettings(nil)}
	TrackDBOperation(context.Background(), tc, deleteSample, nil, time.Now(), 4, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	calls := findSum(t, rm, metricDBCalls)
	rows := findSum(t, rm, metricRowsAffected)
	assert.Equal(t, int64(1), sumFor(calls, "metrics_sample"))
	assert.Equal(t, int64(4), sumFor(rows, "metrics_sample"))
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return metricdata.Sum[int64]{}
}

func sumFor(sum metricdata.Sum[int64], table string) int64 {
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value("db.collection.name"); ok && v.AsString() == table {
			total += dp.Value
		}
	}
	return total
}

func newTrackedMock(t *testing.T) (*Connection, sqlmock.Sqlmock, func() []map[string]any) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	log, entries := captureLogs(t)
	return NewConnection(sqlconn.New(db, types.PostgreSQL, nil), log, nil), mock, entries
}

func TestConnectionTracksStatements(t *testing.T) {
	conn, mock, entries := newTrackedMock(t)
	mock.ExpectQuery(selectPersons).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(int64(1), "fake@mail.com"))
	mock.ExpectExec(updatePersons).
		WithArgs("astolfo@waifu.church", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	rows, err := conn.Query(ctx, selectPersons, int64(1))
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	_, err = conn.Exec(ctx, updatePersons, "astolfo@waifu.church", int64(1))
	require.NoError(t, err)

	logged := entries()
	require.Len(t, logged, 2)
	assert.Equal(t, selectPersons, logged[0]["query"])
	assert.Equal(t, updatePersons, logged[1]["query"])
	assert.Equal(t, float64(1), logged[1]["rows_affected"])
	assert.Equal(t, types.PostgreSQL, conn.DatabaseType())
	assert.NotNil(t, conn.Unwrap())
}

func TestConnectionTracksTransactions(t *testing.T) {
	conn, mock, entries := newTrackedMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(updatePersons).
		WithArgs("astolfo@waifu.church", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	assert.IsType(t, &Transaction{}, tx)
	_, err = tx.Exec(ctx, updatePersons, "astolfo@waifu.church", int64(1))
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = conn.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, types.PostgreSQL, tx.DatabaseType())

	var queries []string
	for _, entry := range entries() {
		queries = append(queries, entry["query"].(string))
	}
	assert.Equal(t, []string{"BEGIN", updatePersons, "COMMIT", "BEGIN", "ROLLBACK"}, queries)
}

func TestConnectionLogsFailedBegin(t *testing.T) {
	conn, mock, entries := newTrackedMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := conn.Begin(context.Background())
	require.Error(t, err)

	logged := entries()
	require.Len(t, logged, 1)
	assert.Equal(t, "error", logged[0]["level"])
	assert.Equal(t, "BEGIN", logged[0]["query"])
}
