package common

import "strings"

// UnknownStr is the String() fallback for unrecognized enum values.
const UnknownStr = "unknown"

// ContainsFold reports whether s contains v under Unicode case folding,
// ignoring surrounding whitespace.
func ContainsFold(s []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, e := range s {
		if strings.EqualFold(strings.TrimSpace(e), v) {
			return true
		}
	}

	return false
}
