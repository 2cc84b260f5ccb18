// Package core holds the domain types shared by storage, services and the
// HTTP layer: identities, activity records, amount coercion and calendar
// windows.
package core

import (
	"math"
	"strconv"
	"strings"
)

// CoerceAmount converts loosely-typed input into an integer amount.
// Numeric input is rounded half away from zero; strings go through
// CoerceAmountString. Anything unparseable yields 0; this function never
// fails, it defaults.
func CoerceAmount(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return roundHalfAway(float64(n))
	case float64:
		return roundHalfAway(n)
	case string:
		return CoerceAmountString(n)
	default:
		return 0
	}
}

// CoerceAmountString parses messy human input such as "12,400" or "¥8,600".
// Every rune that is not a digit, sign or decimal point is stripped, the
// remainder is parsed as a float and rounded half away from zero ("-3.7"
// becomes -4). An empty result or parse failure yields 0.
func CoerceAmountString(s string) int64 {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '+', r == '.':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return roundHalfAway(f)
}

// roundHalfAway rounds to the nearest integer, ties away from zero.
// Values beyond the int64 range saturate instead of wrapping.
func roundHalfAway(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	r := math.Trunc(f + math.Copysign(0.5, f))
	if r >= math.MaxInt64 {
		return math.MaxInt64
	}
	if r <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(r)
}
