package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOperation = "query"

	dbTracerName      = "go-datamap/database"
	maxDBQueryAttrLen = 2000
)

// TrackDBOperation records one finished statement: a span, metrics and a
// log line. Failures log at error level, statements slower than the
// threshold at warn, everything else at debug. It does nothing without a
// logger.
func TrackDBOperation(ctx context.Context, tc *Context, query string, args []any, start time.Time, rowsAffected int64, err error) {
	if tc == nil || tc.Logger == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	elapsed := time.Since(start)

	createDBSpan(ctx, tc, query, start, err)
	recordDBMetrics(ctx, tc, query, elapsed, rowsAffected, err)

	fields := map[string]any{
		"vendor":      tc.Vendor,
		"duration_ms": elapsed.Milliseconds(),
		"query":       TruncateString(query, tc.Settings.MaxQueryLength()),
	}
	if rowsAffected > 0 {
		fields["rows_affected"] = rowsAffected
	}
	if tc.Settings.LogQueryParameters() && len(args) > 0 {
		fields["args"] = SanitizeArgs(args, tc.Settings.MaxQueryLength())
	}
	log := tc.Logger.WithContext(ctx).WithFields(fields)

	switch {
	case err != nil && errors.Is(err, sql.ErrNoRows):
		log.Debug().Msg("Database operation returned no rows")
	case err != nil:
		log.Error().Err(err).Msg("Database operation error")
	case tc.Settings.SlowQueryEnabled() && elapsed > tc.Settings.SlowQueryThreshold():
		log.Warn().Msgf("Slow database operation detected (%s)", elapsed)
	default:
		log.Debug().Msg("Database operation executed")
	}
}

func extractRowsAffected(result sql.Result, err error) int64 {
	if result == nil || err != nil {
		return 0
	}
	affected, affErr := result.RowsAffected()
	if affErr != nil {
		return 0
	}
	return affected
}

// TruncateString shortens value to maxLen runes, ending in "..." when there
// is room for it. maxLen <= 0 disables truncation.
func TruncateString(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	r := []rune(value)
	if len(r) <= maxLen {
		return value
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SanitizeArgs renders bound arguments for logging: strings are truncated,
// byte slices are replaced by their length and other values are formatted
// with %v. Output bind placeholders show as "<out>".
func SanitizeArgs(args []any, maxLen int) []any {
	if len(args) == 0 {
		return nil
	}
	sanitized := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			sanitized[i] = nil
		case string:
			sanitized[i] = TruncateString(v, maxLen)
		case []byte:
			sanitized[i] = fmt.Sprintf("<bytes len=%d>", len(v))
		case sql.Out:
			sanitized[i] = "<out>"
		default:
			sanitized[i] = TruncateString(fmt.Sprintf("%v", v), maxLen)
		}
	}
	return sanitized
}

func createDBSpan(ctx context.Context, tc *Context, query string, start time.Time, err error) {
	operation := extractDBOperation(query)

	_, span := otel.Tracer(dbTracerName).Start(ctx, "db."+operation,
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", normalizeDBVendor(tc.Vendor)),
		semconv.DBQueryText(TruncateString(query, maxDBQueryAttrLen)),
	}
	if operation != defaultOperation {
		attrs = append(attrs, semconv.DBOperationName(operation))
	}
	if table := extractTableName(query); table != "" {
		attrs = append(attrs, attribute.String("db.collection.name", table))
	}
	span.SetAttributes(attrs...)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// extractDBOperation returns the lowercase SQL verb, or "query" when the
// statement does not start with a known one.
func extractDBOperation(query string) string {
	query = strings.TrimSpace(query)
	switch query {
	case "":
		return defaultOperation
	case "BEGIN":
		return "begin"
	case "COMMIT":
		return "commit"
	case "ROLLBACK":
		return "rollback"
	}

	verb, _, _ := strings.Cut(query, " ")
	verb = strings.ToLower(verb)
	switch verb {
	case "select", "insert", "update", "delete", "create", "drop", "alter", "truncate":
		return verb
	default:
		return defaultOperation
	}
}

func normalizeDBVendor(vendor string) string {
	switch v := strings.ToLower(vendor); v {
	case "postgres", "postgresql", "pgx":
		return "postgresql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return v
	}
}
