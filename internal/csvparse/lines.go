package csvparse

import "strings"

// SplitLines splits raw on newlines, trims every line and drops the ones
// that are empty after trimming. Order is preserved.
func SplitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}
