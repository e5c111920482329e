// Package isotime converts timestamps to and from the ISO-8601 text stored in
// every collection.
//
// Stored values use a fixed-width layout in UTC with microsecond precision,
// so lexical order of the stored strings matches chronological order and
// range queries / sorts on the text field behave like time comparisons.
package isotime

import (
	"fmt"
	"time"
)

// Layout is the on-disk format, e.g. 2024-09-01T17:04:05.123456+00:00.
const Layout = "2006-01-02T15:04:05.000000-07:00"

// Format renders t in UTC using Layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse accepts Layout and any RFC 3339 variant (with or without fractional
// seconds, "Z" or a numeric offset) and returns the instant in UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("isotime: parse %q: %w", s, err)
	}
	return t.UTC(), nil
}

// looseLayouts are tried in order by ParseLoose. The last two carry no
// offset: Python's isoformat() of a naive datetime and an HTML
// datetime-local input value.
var looseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseLoose is Parse extended to date-times without an offset, which are
// read as UTC.
func ParseLoose(s string) (time.Time, error) {
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("isotime: %q is not an ISO-8601 date-time", s)
}

// Now returns the current instant truncated to the stored precision, so a
// value that round-trips through the store compares equal to the original.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
