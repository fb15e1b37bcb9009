package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeID normalizes an identity ID into a filesystem-safe slug:
// diacritics stripped, lowercased, spaces collapsed to dashes, and any
// remaining character outside [a-z0-9._-] dropped. Returns ErrInvalidID
// when nothing usable is left or the result would escape the store root.
func NormalizeID(id string) (string, error) {
	id = removeDiacritics(strings.TrimSpace(id))
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, " ", "-")

	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	slug := b.String()

	// Dot-only names would resolve to the store root or its parent.
	if slug == "" || strings.Trim(slug, ".") == "" {
		return "", ErrInvalidID
	}
	return slug, nil
}
