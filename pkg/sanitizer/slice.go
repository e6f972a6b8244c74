package sanitizer

import "strings"

// uniqueNonEmpty cleans every item and keeps the first spelling of each value,
// compared case-insensitively. It never returns nil so stored documents carry
// an empty array instead of null.
func uniqueNonEmpty(items []string, clean Strategy) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		v := clean(item)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
