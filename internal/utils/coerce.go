package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseFloat coerces an upstream value to a float64. The second return value
// reports whether v held a usable number; on false the value is always 0.
// NaN and infinities are rejected because they cannot be encoded as JSON.
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float is ParseFloat without the validity flag
func Float(v any) float64 {
	f, _ := ParseFloat(v)
	return f
}

// ParsePercent coerces a value such as "1.2345%" to 1.2345
func ParsePercent(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		v = strings.TrimSuffix(strings.TrimSpace(s), "%")
	}
	return ParseFloat(v)
}

// Percent is ParsePercent without the validity flag
func Percent(v any) float64 {
	f, _ := ParsePercent(v)
	return f
}

// String returns v when it is a non-empty string, otherwise fallback
func String(v any, fallback string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// Round2 rounds to two decimal places
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
