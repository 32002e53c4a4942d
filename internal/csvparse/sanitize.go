package csvparse

// sanitize.go decides how a raw field becomes a record key or value.
//
// Two coercion policies exist:
//   - raw:   the trimmed field string, untouched
//   - typed: numeric-looking fields become float64 after removing comma
//     grouping ("1,000,000" -> 1000000); everything else stays a string
//
// Sanitizers never fail. Every input produces some Value.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Coercion selects how field values are converted.
type Coercion string

const (
	CoercionRaw   Coercion = "raw"
	CoercionTyped Coercion = "typed"
)

// DefaultCoercion is used when no policy is configured.
const DefaultCoercion = CoercionRaw

// ParseCoercion converts a configuration string to a Coercion.
// Matching is case-insensitive; an empty string yields DefaultCoercion.
func ParseCoercion(s string) (Coercion, error) {
	switch Coercion(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultCoercion, nil
	case CoercionRaw:
		return CoercionRaw, nil
	case CoercionTyped:
		return CoercionTyped, nil
	default:
		return "", fmt.Errorf("%w %q (want raw or typed)", ErrUnknownCoercion, s)
	}
}

// numberRegex is the accepted numeric grammar after grouping removal:
// optional sign, digits with optional fraction (or a bare fraction), and an
// optional exponent.
var numberRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber reports whether s is a finite decimal number and returns it.
//
// Accepted: "42", "-3.5", ".5", "5.", "007" (leading zeros are dropped),
// "1e6". Rejected: "", "0x1F", "Inf", "NaN", "1,000" (callers strip
// grouping first), and anything that overflows float64.
func ParseNumber(s string) (float64, bool) {
	if !numberRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// SanitizeHeader trims s and removes one pair of surrounding double quotes.
// A lone leading or trailing quote is kept.
func SanitizeHeader(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// SanitizeValue converts a tokenized field into a Value under policy c.
// Unknown policies behave like CoercionRaw.
func SanitizeValue(field string, c Coercion) Value {
	field = strings.TrimSpace(field)
	if c != CoercionTyped {
		return StringValue(field)
	}

	if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
		return StringValue(field[1 : len(field)-1])
	}

	if n, ok := ParseNumber(strings.ReplaceAll(field, ",", "")); ok {
		return NumberValue(n)
	}
	return StringValue(field)
}
