package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayouts are tried in order when a string is coerced to TypeTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Coerce converts value to the Go representation of t. nil passes through.
func (t ValueType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch t {
	case TypeInt:
		return toInt(value)
	case TypeFloat:
		return toFloat(value)
	case TypeString:
		return toString(value)
	case TypeBool:
		return toBool(value)
	case TypeTime:
		return toTime(value)
	case TypeUUID:
		return toUUID(value)
	case TypeBytes:
		return toBytes(value)
	default:
		return nil, fmt.Errorf("unsupported value type %s", t)
	}
}

func mismatch(value any, t ValueType) error {
	return fmt.Errorf("cannot convert %T to %s", value, t)
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	case json.Number:
		return v.Int64()
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case bool:
		return 0, mismatch(value, TypeInt)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int", u)
		}
		return int64(u), nil
	default:
		return 0, mismatch(value, TypeInt)
	}
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return parseFloat(v)
	case []byte:
		return parseFloat(string(v))
	case json.Number:
		return v.Float64()
	case bool:
		return 0, mismatch(value, TypeFloat)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, mismatch(value, TypeFloat)
	}
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", mismatch(value, TypeString)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return parseBool(v)
	case []byte:
		return parseBool(string(v))
	}

	n, err := toInt(value)
	if err != nil {
		return false, mismatch(value, TypeBool)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%d is not a boolean", n)
	}
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", s)
	}
	return b, nil
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, mismatch(value, TypeTime)
		}
		return *v, nil
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}, mismatch(value, TypeTime)
	}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognised timestamp", s)
}

func toUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return uuid.Nil, fmt.Errorf("%q is not a uuid", v)
		}
		return id, nil
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%q is not a uuid", v)
		}
		return id, nil
	default:
		return uuid.Nil, mismatch(value, TypeUUID)
	}
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, mismatch(value, TypeBytes)
	}
}
