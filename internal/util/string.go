package util

import (
	"net/url"
	"path"
	"strings"
)

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TruncateString caps s at maxRunes characters (rune-based, not byte-based),
// marking the cut with "..." when there is room for it.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:max(maxRunes, 0)])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// NameFromURL returns the display name a profile URL carries: the first
// non-empty "nome", "name" or "familyName" query parameter, otherwise the
// last non-empty path segment.
func NameFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	for _, key := range []string{"nome", "name", "familyName"} {
		if v := strings.TrimSpace(u.Query().Get(key)); v != "" {
			return v
		}
	}

	segment := path.Base(strings.TrimRight(u.Path, "/"))
	if segment == "." || segment == "/" {
		return ""
	}
	if decoded, err := url.PathUnescape(segment); err == nil {
		return decoded
	}
	return segment
}

// SplitCommaSeparated trims each part and drops empty ones.
func SplitCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
