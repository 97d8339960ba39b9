// Package datepath formats and matches the date encodings used by logsync:
// the UTC path fragment embedded in object keys ("YYYY/MM/DD") and the
// compact date used in local sequence file names ("DD-MM-YYYY").
package datepath

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PathFragmentLayout is the time layout of the key path fragment.
	PathFragmentLayout = "2006/01/02"

	// CompactLayout is the time layout of the compact date.
	CompactLayout = "02-01-2006"
)

// FormatPathFragment returns t's UTC date as "YYYY/MM/DD".
func FormatPathFragment(t time.Time) string {
	return t.UTC().Format(PathFragmentLayout)
}

// FormatCompactDate returns t's date in loc as "DD-MM-YYYY".
// A nil loc means time.Local.
func FormatCompactDate(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(CompactLayout)
}

// ParseCompactDate parses a "DD-MM-YYYY" date as midnight in loc.
// Impossible dates such as 31-02-2024 are rejected.
func ParseCompactDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(CompactLayout, s, location(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse compact date %q: %w", s, err)
	}
	return t, nil
}

// CalendarDate returns midnight of t's date in loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(location(loc))
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Matcher decides whether an object key belongs to a given day.
type Matcher struct {
	// Strict requires the fragment to occupy whole key segments.
	// The default substring match also accepts keys such as
	// "x2024/03/07y.json".
	Strict bool
}

// MatchesDay reports whether key contains the UTC path fragment of day.
func (m Matcher) MatchesDay(key string, day time.Time) bool {
	fragment := FormatPathFragment(day)
	if !m.Strict {
		return strings.Contains(key, fragment)
	}

	for offset := 0; offset < len(key); {
		i := strings.Index(key[offset:], fragment)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(fragment)
		if (start == 0 || key[start-1] == '/') && (end == len(key) || key[end] == '/') {
			return true
		}
		offset = start + 1
	}
	return false
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
