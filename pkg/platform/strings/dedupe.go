// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeFold trims each element, drops blanks and removes case-insensitive
// duplicates. The first-seen spelling of each value is kept and order is preserved.
//
// Example:
//
//	DedupeFold([]string{"Yes", "yes ", "  ", "YES", "No"})
//	// Returns: []string{"Yes", "No"}
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
