package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user HTML (comments) to prevent XSS attacks.
func Sanitize(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}

// StripTags removes all markup and returns plain text, e.g. for article fields and feed
// descriptions. Entities are decoded again since clients render the value as text.
func StripTags(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}
