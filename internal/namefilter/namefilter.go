// Package namefilter sanitizes user-supplied identifiers (profile names)
// before they are used as path components on disk,
// so a malformed or hostile name can never escape its intended directory.
package namefilter

import (
	"regexp"
	"strings"
)

var invalidNameRune = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeProfileName normalizes a profile name for safe use as a single
// path component: disallowed characters collapse to "_", and an empty or
// whitespace-only name becomes "unknown" rather than an empty path
// segment.
func SanitizeProfileName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	sanitized := invalidNameRune.ReplaceAllString(value, "_")
	if isOnlyDots(sanitized) {
		return "unknown"
	}
	return sanitized
}

func isOnlyDots(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			return false
		}
	}
	return true
}
