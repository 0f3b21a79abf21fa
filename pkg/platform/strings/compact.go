// Package strings cleans up lists of short identifiers taken from config
// files and environment variables.
package strings

import "strings"

// Compact trims each value and drops blanks and repeats, keeping first-seen
// order. It returns nil when nothing survives.
func Compact(values []string) []string {
	return compact(values, strings.TrimSpace)
}

// CompactFold is Compact for case-insensitive values such as email
// addresses. Survivors are lowercased.
func CompactFold(values []string) []string {
	return compact(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

// SplitList splits a comma-separated setting and compacts the parts.
func SplitList(s string) []string {
	return Compact(strings.Split(s, ","))
}

func compact(values []string, norm func(string) string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
