package tracking

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	dbMeterName = "go-datamap/database"

	metricDBCalls      = "db.client.calls"
	metricDBDuration   = "db.client.operation.duration"
	metricRowsAffected = "db.rows.affected"
)

// instruments are created lazily from the global meter provider, so a
// provider installed before the first statement is picked up.
type instruments struct {
	calls        metric.Int64Counter
	duration     metric.Float64Histogram
	rowsAffected metric.Int64Counter
}

var (
	meterOnce sync.Once
	dbMetrics *instruments
)

func getInstruments() *instruments {
	meterOnce.Do(func() {
		meter := otel.Meter(dbMeterName)
		inst := &instruments{}

		var err error
		if inst.calls, err = meter.Int64Counter(metricDBCalls,
			metric.WithDescription("Total number of database client calls")); err != nil {
			otel.Handle(err)
		}
		if inst.duration, err = meter.Float64Histogram(metricDBDuration,
			metric.WithDescription("Duration of database operations in milliseconds"),
			metric.WithUnit("ms")); err != nil {
			otel.Handle(err)
		}
		if inst.rowsAffected, err = meter.Int64Counter(metricRowsAffected,
			metric.WithDescription("Number of rows affected by database operations")); err != nil {
			otel.Handle(err)
		}
		dbMetrics = inst
	})
	return dbMetrics
}

func recordDBMetrics(ctx context.Context, tc *Context, query string, duration time.Duration, rowsAffected int64, err error) {
	inst := getInstruments()

	failed := err != nil && !errors.Is(err, sql.ErrNoRows)
	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", normalizeDBVendor(tc.Vendor)),
		attribute.String("db.operation.name", extractDBOperation(query)),
		attribute.String("db.collection.name", extractTableName(query)),
	}

	if inst.calls != nil {
		inst.calls.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Bool("error", failed))...))
	}
	if inst.duration != nil {
		inst.duration.Record(ctx, float64(duration.Nanoseconds())/1e6, metric.WithAttributes(attrs...))
	}
	if inst.rowsAffected != nil && rowsAffected > 0 && !failed {
		inst.rowsAffected.Add(ctx, rowsAffected, metric.WithAttributes(attrs...))
	}
}

var (
	selectTableRegex = regexp.MustCompile("(?i)FROM\\s+[`\"]?(\\w+)[`\"]?")
	insertTableRegex = regexp.MustCompile("(?i)INSERT\\s+INTO\\s+[`\"]?(\\w+)[`\"]?")
	updateTableRegex = regexp.MustCompile("(?i)UPDATE\\s+[`\"]?(\\w+)[`\"]?")
	deleteTableRegex = regexp.MustCompile("(?i)DELETE\\s+FROM\\s+[`\"]?(\\w+)[`\"]?")
)

// extractTableName returns the first table a statement names, lowercased,
// or "" when it cannot tell.
func extractTableName(query string) string {
	var pattern *regexp.Regexp
	switch extractDBOperation(query) {
	case "select":
		pattern = selectTableRegex
	case "insert":
		pattern = insertTableRegex
	case "update":
		pattern = updateTableRegex
	case "delete":
		pattern = deleteTableRegex
	default:
		return ""
	}
	if m := pattern.FindStringSubmatch(query); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return ""
}
