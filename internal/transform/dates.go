package transform

import (
	"strings"
	"time"
)

// DateParser turns raw cell text into a calendar date.
type DateParser func(s string) (time.Time, bool)

// LayoutParser returns a DateParser for a single time layout.
func LayoutParser(layout string) DateParser {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// permissiveLayouts is the catch-all tried after the explicit formats.
// Ambiguous numeric dates read month first.
var permissiveLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-1-2 15:04",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1-2-2006 15:04:05",
	"1/2/06",
	"1-2-06",
	"1.2.2006",
	"20060102",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Mon, 2 Jan 2006",
	"Monday, January 2, 2006",
}

// PermissiveParser tries a broad set of common layouts.
func PermissiveParser(s string) (time.Time, bool) {
	for _, layout := range permissiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DefaultDateParsers is the ordered chain applied to sample dates: the source
// mixes US dash, US slash and ISO conventions across records.
func DefaultDateParsers() []DateParser {
	return []DateParser{
		LayoutParser("1-2-2006"),
		LayoutParser("1/2/2006"),
		LayoutParser("2006-1-2"),
		PermissiveParser,
	}
}

// ParseDate applies parsers left to right and returns the first success,
// truncated to a UTC calendar date. Blank or unparseable input yields nil.
func ParseDate(s string, parsers []DateParser) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, p := range parsers {
		if t, ok := p(s); ok {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// DateKey is the YYYYMMDD surrogate key of a calendar date.
func DateKey(t time.Time) int64 {
	return int64(t.Year()*10000 + int(t.Month())*100 + t.Day())
}
