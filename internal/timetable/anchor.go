package timetable

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Date resolution errors.
var (
	ErrHeaderFormat = errors.New("unrecognized date header")
	ErrNoAnchor     = errors.New("no date anchor in scope")
)

// Anchor is the active calendar-date context while walking the document.
// It is a value threaded through the assembler's loop, never shared state.
//
// Ref is the first day covered by the anchor at midnight (naive date, no
// zone yet). Every anchor stays valid for the week starting at Ref: a week
// banner names that week outright, and a single-day banner still resolves
// later weekdays of the same week, since the source layout prints one
// banner per day.
type Anchor struct {
	Ref time.Time
}

// Valid reports whether the anchor has been set at all.
func (a Anchor) Valid() bool {
	return !a.Ref.IsZero()
}

// Resolve maps a weekday (or the absence of one) onto a concrete date.
// Rows with no weekday token belong to the anchor's own first day.
// Resolution is deterministic: the same-or-next occurrence of the weekday
// counted from Ref, which always lands inside the anchor's week.
func (a Anchor) Resolve(wd time.Weekday, hasWeekday bool) (time.Time, error) {
	if !a.Valid() {
		return time.Time{}, ErrNoAnchor
	}
	if !hasWeekday {
		return a.Ref, nil
	}
	offset := (int(wd) - int(a.Ref.Weekday()) + 7) % 7
	return a.Ref.AddDate(0, 0, offset), nil
}

var monthNames = map[string]time.Month{
	// English
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
	// German; Januar/Februar etc. The source uses full month names.
	"januar": time.January, "februar": time.February, "märz": time.March,
	"maerz": time.March, "mai": time.May, "juni": time.June, "juli": time.July,
	"oktober": time.October, "dezember": time.December,
}

func parseMonthName(name string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(name)]
	return m, ok
}

// ParseDateHeader parses a classified date-header line into an Anchor.
// Recognized shapes, tried in order:
//
//	"Week of 11 August 2025" / "Woche vom 11. August 2025"  (week banner)
//	"Donnerstag, 14. August 2025"                           (day banner)
//	"14.08.2025"                                            (day banner)
//
// Unrecognized text returns ErrHeaderFormat and the caller keeps its
// previous anchor.
func ParseDateHeader(text string) (Anchor, error) {
	text = Collapse(text)

	if m := weekHeaderRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := parseMonthName(m[2])
		if !ok {
			return Anchor{}, ErrHeaderFormat
		}
		year, _ := strconv.Atoi(m[3])
		ref, err := makeDate(year, month, day)
		if err != nil {
			return Anchor{}, err
		}
		return Anchor{Ref: ref}, nil
	}

	if m := dayHeaderRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[2])
		month, ok := parseMonthName(m[3])
		if !ok {
			return Anchor{}, ErrHeaderFormat
		}
		year, _ := strconv.Atoi(m[4])
		ref, err := makeDate(year, month, day)
		if err != nil {
			return Anchor{}, err
		}
		// Sanity check: the printed weekday should agree with the date.
		// Disagreement means a mangled header, not a usable anchor.
		if wd, ok := parseWeekday(m[1]); ok && wd != ref.Weekday() {
			return Anchor{}, ErrHeaderFormat
		}
		return Anchor{Ref: ref}, nil
	}

	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		monthNum, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if monthNum < 1 || monthNum > 12 {
			return Anchor{}, ErrHeaderFormat
		}
		ref, err := makeDate(year, time.Month(monthNum), day)
		if err != nil {
			return Anchor{}, err
		}
		return Anchor{Ref: ref}, nil
	}

	return Anchor{}, ErrHeaderFormat
}

// makeDate builds a midnight UTC date and rejects day-of-month overflow
// (time.Date would silently normalize "32 August" into September).
func makeDate(year int, month time.Month, day int) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, ErrHeaderFormat
	}
	return t, nil
}
