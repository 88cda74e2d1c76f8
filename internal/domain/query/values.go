package query

import (
	"cmp"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat converts JSON-decoded and Go numeric values to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ToFloat exposes numeric coercion to query scopes that aggregate values.
func ToFloat(v any) (float64, bool) { return toFloat(v) }

// number is a numeric value kept exact when it is integral.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return number{i: i, f: float64(i), isInt: true}, true
		}
	case int:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case int32:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case int64:
		return number{i: n, f: float64(n), isInt: true}, true
	case uint32:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	}
	f, ok := toFloat(v)
	if !ok {
		return number{}, false
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return number{i: int64(f), f: f, isInt: true}, true
	}
	return number{f: f}, true
}

func (a number) compare(b number) int {
	if a.isInt && b.isInt {
		return cmp.Compare(a.i, b.i)
	}
	return cmp.Compare(a.f, b.f)
}

// compareValues orders two values of the same family: numbers numerically, strings lexically,
// booleans false<true. Mixed families are not comparable.
func compareValues(a, b any) (int, bool) {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		if !ok {
			return 0, false
		}
		return na.compare(nb), true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// CompareValues exposes the ordering used by range predicates so scopes sort consistently.
func CompareValues(a, b any) (int, bool) { return compareValues(a, b) }

// valuesEqual compares JSON-shaped values, treating all numeric types as numbers.
func valuesEqual(a, b any) bool {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && na.compare(nb) == 0
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, present := y[k]
			if !present || !valuesEqual(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// ParseInt interprets pagination-style input. Absent, empty, boolean, or non-numeric input
// reports ok=false; JSON numbers are truncated toward zero.
func ParseInt(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	default:
		f, ok := toFloat(t)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	}
}
