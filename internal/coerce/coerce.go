// Package coerce converts loosely-typed JSON/HTTP values into canonical Go
// values with fallback defaults. Inbound payloads routinely carry stringified
// numbers and booleans, and every option must tolerate them without failing.
package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// NumberOr returns v as a float64, or fallback when v is nil, an empty string,
// or anything that does not parse to a finite number.
func NumberOr(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case nil:
		return fallback
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return n
	case float32:
		return NumberOr(float64(n), fallback)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case json.Number:
		return NumberOr(string(n), fallback)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return fallback
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// IntOr returns v as an int, applying the same tolerance as NumberOr.
func IntOr(v interface{}, fallback int) int {
	return int(NumberOr(v, float64(fallback)))
}

// BoolOr returns v as a bool. Native booleans pass through. Strings match
// case-insensitively against {1,true,yes,on} and {0,false,no,off}. Numeric
// values map 0 to false and any other finite number to true. Anything else
// yields fallback.
func BoolOr(v interface{}, fallback bool) bool {
	switch b := v.(type) {
	case nil:
		return fallback
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		default:
			return fallback
		}
	case float64, float32, int, int64, uint:
		return NumberOr(v, 0) != 0
	default:
		return fallback
	}
}

// StringOr returns v as a string when it is one and non-empty, else fallback.
func StringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// DurationMsOr interprets v as a millisecond count and returns it as a
// time.Duration, or fallback when v does not coerce to a positive number.
func DurationMsOr(v interface{}, fallback time.Duration) time.Duration {
	ms := NumberOr(v, -1)
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
