package timetable

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"ttcal/internal/model"
)

// Row parse error kinds. Each maps to one way a session row can be
// malformed; the assembler records them as diagnostics and moves on.
var (
	ErrMissingTimeRange  = errors.New("missing or invalid time range")
	ErrTimeOrder         = errors.New("start time is not before end time")
	ErrMissingCourse     = errors.New("missing course code")
	ErrMissingGroups     = errors.New("no class-group labels")
	ErrAmbiguousLocation = errors.New("location is neither a room nor a remote marker")
)

// Rules carries the configurable parts of row parsing.
type Rules struct {
	// RemoteMarkers are matched case-insensitively as substrings of the
	// location field; any hit makes the session remote.
	RemoteMarkers []string
}

var defaultRemoteMarkers = []string{"teams", "online", "remote"}

func (r Rules) markers() []string {
	if len(r.RemoteMarkers) == 0 {
		return defaultRemoteMarkers
	}
	return r.RemoteMarkers
}

var weekdayNames = map[string]time.Weekday{
	// English, full and clipped forms.
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
	// German, full forms as printed in the source layout.
	"montag":     time.Monday,
	"dienstag":   time.Tuesday,
	"mittwoch":   time.Wednesday,
	"donnerstag": time.Thursday,
	"freitag":    time.Friday,
	"samstag":    time.Saturday,
	"sonntag":    time.Sunday,
}

// parseWeekday matches one token against the known weekday names, ignoring
// case and trailing punctuation left over from the table layout.
func parseWeekday(tok string) (time.Weekday, bool) {
	tok = strings.ToLower(strings.TrimRight(tok, ".,:"))
	wd, ok := weekdayNames[tok]
	return wd, ok
}

// ParseRow parses one classified session-row line into a SessionEntry.
//
// The row is tokenized after whitespace collapse: an optional weekday
// token, a mandatory HH:MM-HH:MM time range, the course code, an optional
// location (room or remote marker) and the class-group labels, in whatever
// order the text layer happened to emit them. The "COURSE / ROOM" slash
// form of the original table cells is also accepted.
//
// On ErrMissingGroups the returned entry is otherwise complete, so the
// caller can still finish it from a continuation line.
func ParseRow(raw string, rules Rules) (model.SessionEntry, error) {
	var entry model.SessionEntry
	text := Collapse(raw)

	loc := timeRangeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return entry, ErrMissingTimeRange
	}
	m := timeRangeRe.FindStringSubmatch(text)
	start, end, err := parseTimeRange(m)
	if err != nil {
		return entry, err
	}
	entry.Start = start
	entry.End = end

	// Strip the time range and retokenize what is left.
	rest := Collapse(text[:loc[0]] + " " + text[loc[1]:])
	toks := strings.Fields(rest)

	// Pull out a weekday token if present.
	kept := toks[:0]
	for _, tok := range toks {
		if wd, ok := parseWeekday(tok); ok && !entry.HasWeekday {
			entry.Weekday = wd
			entry.HasWeekday = true
			continue
		}
		kept = append(kept, tok)
	}
	toks = kept

	// Pull out group labels (single or comma-joined).
	var fieldToks []string
	for _, tok := range toks {
		if isGroupList(tok) {
			entry.Groups = append(entry.Groups, splitGroups([]string{tok})...)
			continue
		}
		fieldToks = append(fieldToks, tok)
	}

	course, location := splitCourseLocation(fieldToks)
	if course == "" {
		return entry, ErrMissingCourse
	}
	entry.CourseCode = course

	if !entry.Start.Before(entry.End) {
		return entry, ErrTimeOrder
	}

	switch {
	case location == "":
		return entry, ErrAmbiguousLocation
	case isRemote(location, rules.markers()):
		entry.Remote = true
	default:
		entry.Room = location
	}

	if len(entry.Groups) == 0 {
		return entry, ErrMissingGroups
	}
	return entry, nil
}

func parseTimeRange(m []string) (model.TimeOfDay, model.TimeOfDay, error) {
	var start, end model.TimeOfDay
	vals := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return start, end, ErrMissingTimeRange
		}
		vals[i] = n
	}
	start = model.TimeOfDay{Hour: vals[0], Minute: vals[1]}
	end = model.TimeOfDay{Hour: vals[2], Minute: vals[3]}
	for _, t := range []model.TimeOfDay{start, end} {
		if t.Hour > 23 || t.Minute > 59 {
			return start, end, ErrMissingTimeRange
		}
	}
	return start, end, nil
}

// splitCourseLocation separates the leftover field tokens into course code
// and location text. A slash splits the two explicitly (the original table
// cells read "OOP / IE306"); otherwise the first token is the course and
// the remainder the location.
func splitCourseLocation(toks []string) (course, location string) {
	joined := strings.Join(toks, " ")
	if i := strings.Index(joined, "/"); i >= 0 {
		course = strings.TrimSpace(joined[:i])
		location = strings.TrimSpace(joined[i+1:])
		return course, location
	}
	if len(toks) == 0 {
		return "", ""
	}
	return toks[0], strings.Join(toks[1:], " ")
}

func isRemote(location string, markers []string) bool {
	l := strings.ToLower(location)
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(l, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
