package model

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date, as printed in the
// timetable's time column (e.g. "17:30").
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.Minutes() < u.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// SessionEntry represents one class occurrence as parsed from the document,
// before its weekday has been resolved to a concrete calendar date.
//
// Exactly one of Room != "" or Remote holds for a valid entry; the row
// parser rejects rows where the location cannot be resolved either way.
type SessionEntry struct {
	CourseCode string

	Room   string
	Remote bool

	// Weekday is only meaningful when HasWeekday is set; rows under a
	// single-day header carry no weekday token of their own.
	Weekday    time.Weekday
	HasWeekday bool

	Start TimeOfDay
	End   TimeOfDay

	// Groups lists the eligible class-group labels in document order.
	Groups []string

	// Week is the week-of-semester number if a week-number line was in
	// scope when the row was parsed; 0 means unknown.
	Week int
}

// Event is one calendar-ready occurrence, fully resolved into the
// configured timezone. It is immutable and consumed exactly once by the
// ICS serializer.
type Event struct {
	Title       string
	Location    string
	Description string

	Start time.Time
	End   time.Time
}

// Diagnostic records one skipped line together with the reason. The
// assembler accumulates these instead of aborting the parse.
type Diagnostic struct {
	Page int // 1-based page number
	Line int // 1-based line number within the page
	Text string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("page %d line %d: %v: %q", d.Page, d.Line, d.Err, d.Text)
}
