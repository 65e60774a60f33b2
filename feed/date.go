package feed

import (
	"fmt"
	"strings"
	"time"
)

// Display date layouts seen in articles ("Nov 12, 2025", "2025-11-12", ...).
var displayLayouts = []string{
	"Jan 2, 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDisplayDate parses an article's display date. Display dates are free text, so callers
// must treat an error as "unknown" rather than fail.
func ParseDisplayDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range displayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
