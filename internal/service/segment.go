package service

import (
	"strings"
	"unicode"
)

// segment.go - URL segment normalization.
//
// NormalizeSegment is the single source of truth for turning display text
// (folder names, document titles, user-entered segments) into URL-safe path
// components. Both pathSegment and pageSegment writes pass through here.

// NormalizeSegment converts arbitrary text into a URL-safe segment:
// lower-cased, trimmed, characters outside [\w\s-] stripped, internal
// whitespace collapsed to single hyphens, repeated hyphens collapsed,
// leading/trailing hyphens stripped.
//
// Total and idempotent: never fails, returns "" when nothing is retainable,
// and NormalizeSegment(NormalizeSegment(x)) == NormalizeSegment(x).
//
// Examples:
//   - NormalizeSegment("Spring Campaign") → "spring-campaign"
//   - NormalizeSegment("  Notes (copy 2) ") → "notes-copy-2"
//   - NormalizeSegment("***") → ""
func NormalizeSegment(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			b.WriteByte('-')
		default:
			// Drop everything else (punctuation, symbols)
		}
	}

	// Collapse hyphen runs
	collapsed := b.String()
	for strings.Contains(collapsed, "--") {
		collapsed = strings.ReplaceAll(collapsed, "--", "-")
	}

	return strings.Trim(collapsed, "-")
}

// JoinPath joins two path fragments with '/', omitting the separator when
// either side is empty.
//
// Examples:
//   - JoinPath("appeals/2024", "spring-campaign") → "appeals/2024/spring-campaign"
//   - JoinPath("", "readme") → "readme"
func JoinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "/" + child
}

// LastSegment returns the final path component of a slug.
func LastSegment(slug string) string {
	slug = strings.Trim(slug, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		return slug[i+1:]
	}
	return slug
}
