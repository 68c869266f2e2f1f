package sheettable

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// isNumeric checks if a value is numeric
func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// toFloat64 converts a numeric value to float64
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}

// sameValue reports whether two cell values are identical, treating numbers
// of different Go types as equal when they hold the same value.
func sameValue(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumeric(a) && isNumeric(b) {
		return toFloat64(a) == toFloat64(b)
	}
	return reflect.DeepEqual(a, b)
}

// echoMatches compares a submitted value with the value the service echoed
// back. An omitted value and an empty string are equivalent.
func echoMatches(submitted, updated interface{}) bool {
	if sameValue(submitted, updated) {
		return true
	}
	if submitted == nil && updated == "" {
		return true
	}
	if submitted == "" && updated == nil {
		return true
	}
	return false
}

// cellString renders a cell value the way the sheet displays unformatted values.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// typeRank orders values of different kinds: nil < bool < number < string < other.
func typeRank(v interface{}) int {
	switch {
	case v == nil:
		return 0
	case isNumeric(v):
		return 2
	}
	switch v.(type) {
	case bool:
		return 1
	case string:
		return 3
	default:
		return 4
	}
}

// compareValues returns -1, 0 or 1. Numbers compare numerically and strings
// lexically; values of different kinds compare by kind.
func compareValues(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case 0:
		return 0
	case 1:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case 2:
		fa, fb := toFloat64(a), toFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	}
}
