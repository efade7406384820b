package utils

import (
	"math"
	"strconv"
	"strings"
)

// nullTokens are cell values that mean "no value", compared case-insensitively
// after trimming.
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
}

// IsNullToken reports whether s is empty or a literal "no value" marker.
func IsNullToken(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// NullableString trims s and returns nil for null tokens.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if IsNullToken(s) {
		return nil
	}
	return &s
}

// ParseFloat converts raw cell text to a float. Unparseable, NaN and
// infinite values yield nil.
func ParseFloat(s string) *float64 {
	if IsNullToken(s) {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseInt converts raw cell text to an int64. Integral float notation
// ("12.0") is accepted since spreadsheet exports often write counts that way.
func ParseInt(s string) *int64 {
	if IsNullToken(s) {
		return nil
	}
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &i
	}
	f := ParseFloat(s)
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f == nil || *f != math.Trunc(*f) || *f >= math.MaxInt64 || *f < math.MinInt64 {
		return nil
	}
	i := int64(*f)
	return &i
}

// Deref returns the pointed-to value or nil, for handing nullable values to
// database/sql.
func Deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
