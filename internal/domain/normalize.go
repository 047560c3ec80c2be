package domain

import (
	"strings"
)

// NormalizeText prepares free-text search input for matching:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

const maxCodeLen = 32

// NormalizeFacetCode canonicalizes a facet value-code: trimmed, lowercase,
// limited to [a-z0-9_-] and at most 32 characters. Returns ok=false for
// malformed codes; callers at the input boundary drop those silently.
func NormalizeFacetCode(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || len(code) > maxCodeLen {
		return "", false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return "", false
		}
	}
	return code, true
}

// IsValidSlug reports whether s is a valid entity slug (dataset or badge
// name): non-empty, at most 255 characters, [a-z0-9-] only, no leading or
// trailing hyphen.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
