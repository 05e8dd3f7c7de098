// Package histfilter implements the history search match: one term,
// case-insensitive substring, checked against a record's searchable fields.
// The same semantics run client-side per keystroke; this is the server-side
// half used for ?q= rendering.
package histfilter

import "strings"

// Matches reports whether term matches any of the fields. An empty term
// matches everything.
func Matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
