package service

import (
	"strings"
	"unicode"
)

// CanonicalKey maps a raw parameter name to its matching key: lower case
// with whitespace, underscores and hyphens removed. Names that differ only
// in those respects share a key.
func CanonicalKey(rawName string) string {
	var b strings.Builder
	b.Grow(len(rawName))
	for _, r := range strings.ToLower(rawName) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchable reports whether a raw name can take part in matching.
func matchable(rawName string) (string, bool) {
	if strings.TrimSpace(rawName) == "" {
		return "", false
	}
	key := CanonicalKey(rawName)
	return key, key != ""
}
