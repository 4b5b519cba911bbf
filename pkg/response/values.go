package response

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
)

// integerValue reports the integer held by v. Floats count when they have no
// fractional part; bools and strings never do.
func integerValue(v any) (int64, bool) {
	if num, ok := v.(json.Number); ok {
		if n, err := num.Int64(); err == nil {
			return n, true
		}
		f, err := num.Float64()
		if err != nil {
			return 0, false
		}
		return floatInteger(f)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatInteger(rv.Float())
	}
	return 0, false
}

func floatInteger(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	// out-of-range values only need to stay out of range
	if f > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if f < math.MinInt32 {
		return math.MinInt32, true
	}
	return int64(f), true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}
