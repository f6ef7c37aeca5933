package workflow

import "strings"

// NormalizeIdentity canonicalizes an approver/requester identifier:
// trimmed, lower-cased. Empty input stays empty.
func NormalizeIdentity(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeIdentities normalizes a list and drops empties and duplicates,
// keeping first-seen order.
func NormalizeIdentities(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		id := NormalizeIdentity(r)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
