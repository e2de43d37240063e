package domain

import (
	"fmt"
	"strconv"
	"time"
)

// NullSentinel is the string substituted for missing values when building
// hash inputs
const NullSentinel = "NULL"

// FormatValue renders a scalar value as a stable string. The rendering is
// deterministic across runs for every supported field type; nil becomes
// the NULL sentinel.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return NullSentinel
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ValuesEqual compares two scalar values null-aware: two nils are equal,
// nil vs non-nil differ. Numeric values compare across concrete types
// (int 1 equals int64 1 equals float64 1).
func ValuesEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if aNum, ok1 := ToFloat64(a); ok1 {
		if bNum, ok2 := ToFloat64(b); ok2 {
			return aNum == bNum
		}
	}

	if aTime, ok1 := a.(time.Time); ok1 {
		if bTime, ok2 := b.(time.Time); ok2 {
			return aTime.Equal(bTime)
		}
	}

	if aStr, ok1 := a.(string); ok1 {
		if bStr, ok2 := b.(string); ok2 {
			return aStr == bStr
		}
	}

	return FormatValue(a) == FormatValue(b)
}

// ToFloat64 converts various numeric types to float64 for comparison
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
