package content

import (
	"strings"
	"time"
)

// dateLayouts is tried in order; ambiguous inputs (e.g. "02/03/2024")
// resolve by position in this list, never by locale inference.
var dateLayouts = []string{
	"2006-01-02",      // ISO
	"01/02/2006",      // US slash
	"1/2/2006",        // US slash, unpadded
	"01/02/06",        // US short
	"January 2, 2006", // long month, comma
	"January 2. 2006", // long month, period
	"Jan. 2, 2006",
	"Jan 2, 2006",
	"2 January 2006", // day-first international
	"01-02-2006",     // dash-separated numeric
	"1-2-2006",
}

// NormalizeDate parses a loosely-formatted date string into canonical
// YYYY-MM-DD form. ISO datetimes are truncated at the time separator before
// pattern matching. Returns ok=false on empty input or when no layout
// matches; never panics.
func NormalizeDate(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	if idx := strings.IndexAny(trimmed, "T"); idx > 0 {
		if _, err := time.Parse("2006-01-02", trimmed[:idx]); err == nil {
			trimmed = trimmed[:idx]
		}
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		return parsed.Format("2006-01-02"), true
	}
	return "", false
}
