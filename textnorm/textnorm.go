// Package textnorm holds the one normalization rule used for article search, both by the SQL
// listing query and by the in-memory feed filter.
//
// A string is normalized by decomposing it (NFD), dropping combining marks, lowercasing, and
// collapsing every run of characters that are neither letters nor digits into a single space.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical search form of s: "Crédit-Suisse  Q3!" becomes "credit suisse q3".
func Normalize(s string) string {
	// transformers carry internal state, so one chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	gap := false
	for _, r := range strings.ToLower(stripped) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte(' ')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize splits a free-text query into normalized tokens. Blank input yields nil.
func Tokenize(q string) []string {
	return strings.Fields(Normalize(q))
}

// IsNumeric reports whether token consists only of ASCII digits.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

// Fold trims and lowercases s. Author filtering compares folded values.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTag trims and lowercases a tag. Commas are removed since they delimit the stored tag list.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(tag, ",", "")))
}

// NormalizeTags normalizes every tag, dropping empties and duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
