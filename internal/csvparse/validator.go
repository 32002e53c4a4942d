package csvparse

import (
	"fmt"
	"strings"
)

// Validate decides whether a tokenized row-set is well formed. rows[0] is the
// header. A data row whose field count differs from the header's is accepted
// only when all of its fields are blank; Parse skips such rows.
//
// Header names must be unique after SanitizeHeader, since a record cannot
// hold two values under one key.
func Validate(rows [][]string) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: no lines", ErrMalformedInput)
	}

	header := rows[0]
	if len(header) == 0 {
		return fmt.Errorf("%w: header has no fields", ErrMalformedInput)
	}

	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := SanitizeHeader(h)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: duplicate header %q in columns %d and %d",
				ErrMalformedInput, name, prev+1, i+1)
		}
		seen[name] = i
	}

	for i, row := range rows[1:] {
		if len(row) == len(header) || isBlankRow(row) {
			continue
		}
		return fmt.Errorf("%w: line %d has %d fields, header has %d",
			ErrMalformedInput, i+2, len(row), len(header))
	}

	return nil
}

// isBlankRow reports whether every field is empty after trimming.
// A row with no fields at all counts as blank.
func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
