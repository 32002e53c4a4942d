package csvparse

// tokenizer.go splits a single CSV line into fields.
//
// The scanner tracks two flags, one per quote style. Quote styles do not
// nest: once a "double" span is open a ' is ordinary content, and the other
// way round. Inside a double span a doubled "" is an escaped quote. Quote
// markers themselves never reach the output.

import "strings"

// SplitFields returns the fields of line, split on commas outside quoted
// spans. Every field is trimmed. A trailing field is only emitted when it is
// non-empty, so "a,b," yields two fields, not three.
func SplitFields(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inDouble bool
		inSingle bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && !inDouble && !inSingle:
			inDouble = true
		case c == '"' && inDouble:
			if i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inDouble = false
			}
		case c == '\'' && !inDouble && !inSingle:
			inSingle = true
		case c == '\'' && inSingle:
			inSingle = false
		case c == ',' && !inDouble && !inSingle:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			// Multi-byte UTF-8 sequences never contain ASCII bytes, so
			// copying byte by byte keeps non-ASCII text intact.
			field.WriteByte(c)
		}
	}

	if last := strings.TrimSpace(field.String()); last != "" {
		fields = append(fields, last)
	}
	return fields
}
