package bridge

import (
	"fmt"

	"github.com/gaborage/go-datamap/database/types"
)

// convert maps one raw driver value to the type declared for its column.
// NULL stays nil. Untyped columns only turn []byte into string.
func convert(c types.OutputColumn, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch {
	case c.Field != nil:
		v, err := c.Field.Coerce(raw)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Key, err)
		}
		return v, nil
	case c.Type != 0:
		v, err := c.Type.Coerce(raw)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Key, err)
		}
		return v, nil
	}

	if b, ok := raw.([]byte); ok {
		return string(b), nil
	}
	return raw, nil
}
