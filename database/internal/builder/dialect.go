package builder

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-datamap/database/types"
)

// oracleReservedWords must be quoted when used as identifiers on Oracle.
var oracleReservedWords = map[string]struct{}{
	"ACCESS": {}, "ADD": {}, "ALL": {}, "ALTER": {}, "AND": {}, "ANY": {}, "AS": {}, "ASC": {},
	"BEGIN": {}, "BETWEEN": {}, "BY": {}, "CASE": {}, "CHECK": {}, "COLUMN": {}, "COMMENT": {},
	"CONNECT": {}, "CREATE": {}, "CURRENT": {}, "DATE": {}, "DELETE": {}, "DESC": {}, "DISTINCT": {},
	"DROP": {}, "ELSE": {}, "EXCLUDE": {}, "EXISTS": {}, "FOR": {}, "FROM": {}, "GRANT": {},
	"GROUP": {}, "HAVING": {}, "IN": {}, "INDEX": {}, "INSERT": {}, "INTERSECT": {}, "INTO": {},
	"IS": {}, "LEVEL": {}, "LIKE": {}, "LOCK": {}, "MINUS": {}, "MODE": {}, "NOCOMPRESS": {},
	"NOT": {}, "NULL": {}, "NUMBER": {}, "OF": {}, "ON": {}, "OPTION": {}, "OR": {}, "ORDER": {},
	"ROW": {}, "ROWNUM": {}, "SELECT": {}, "SET": {}, "SHARE": {}, "SIZE": {}, "START": {},
	"TABLE": {}, "THEN": {}, "TO": {}, "TRIGGER": {}, "UID": {}, "UNION": {}, "UNIQUE": {},
	"UPDATE": {}, "USER": {}, "VALUES": {}, "VIEW": {}, "WHEN": {}, "WHERE": {}, "WITH": {},
}

// Dialect holds the vendor-specific parts of SQL generation: placeholder
// style, identifier quoting and pagination.
type Dialect struct {
	vendor      string
	placeholder squirrel.PlaceholderFormat
}

// NewDialect returns the dialect for a vendor. Unknown vendors use "?" placeholders.
func NewDialect(vendor string) Dialect {
	var placeholder squirrel.PlaceholderFormat
	switch vendor {
	case types.PostgreSQL:
		placeholder = squirrel.Dollar
	case types.Oracle:
		placeholder = squirrel.Colon
	default:
		placeholder = squirrel.Question
	}
	return Dialect{vendor: vendor, placeholder: placeholder}
}

// Vendor returns the vendor name.
func (d Dialect) Vendor() string { return d.vendor }

func (d Dialect) statements() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.placeholder)
}

// Quote quotes an identifier when the vendor requires it. Identifiers are
// validated when schemas are defined, so only reserved words need quoting.
func (d Dialect) Quote(identifier string) string {
	if d.vendor != types.Oracle {
		return identifier
	}
	if _, reserved := oracleReservedWords[strings.ToUpper(identifier)]; reserved {
		return `"` + strings.ToUpper(identifier) + `"`
	}
	return identifier
}

// paginate applies LIMIT/OFFSET, or the OFFSET ... FETCH NEXT suffix on Oracle.
func (d Dialect) paginate(sb squirrel.SelectBuilder, limit, offset *uint64) squirrel.SelectBuilder {
	if d.vendor == types.Oracle {
		if suffix := oraclePagination(limit, offset); suffix != "" {
			return sb.Suffix(suffix)
		}
		return sb
	}
	if limit != nil {
		sb = sb.Limit(*limit)
	}
	if offset != nil {
		sb = sb.Offset(*offset)
	}
	return sb
}

// oraclePagination builds the Oracle 12c+ "OFFSET n ROWS FETCH NEXT m ROWS ONLY" suffix.
func oraclePagination(limit, offset *uint64) string {
	parts := make([]string, 0, 2)
	if offset != nil {
		parts = append(parts, fmt.Sprintf("OFFSET %d ROWS", *offset))
	}
	if limit != nil {
		parts = append(parts, fmt.Sprintf("FETCH NEXT %d ROWS ONLY", *limit))
	}
	return strings.Join(parts, " ")
}
