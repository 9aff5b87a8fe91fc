// Package ics maps resolved timetable entries onto calendar events and
// serializes them into the iCalendar wire format.
package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "ttcal/internal/log"
	"ttcal/internal/model"
	"ttcal/internal/timetable"
)

// Serialization errors. These are structural and fatal to the whole
// Encode call; the output file is all-or-nothing.
var (
	ErrEventTitle = errors.New("event has no title")
	ErrEventTimes = errors.New("event end is not after start")
)

// Mapping configures how a dated session entry becomes an event.
type Mapping struct {
	// Location is the timezone the timetable's wall-clock times live in.
	Location *time.Location
	// RemoteLocation is the LOCATION sentinel for remote sessions.
	RemoteLocation string
}

// MapEvent converts one resolved session entry into a calendar event.
// It is a pure function with no error path: entries reaching this stage
// are well-formed by construction (the row parser rejected the rest).
func MapEvent(e timetable.DatedEntry, m Mapping) model.Event {
	loc := m.Location
	if loc == nil {
		loc = time.Local
	}

	groups := strings.Join(e.Groups, ",")

	var location, description string
	if e.Remote {
		location = m.RemoteLocation
		if location == "" {
			location = "Online"
		}
		description = fmt.Sprintf("Online class for %s", groups)
	} else {
		location = e.Room
		description = fmt.Sprintf("Class: %s\nRoom: %s", groups, e.Room)
	}
	if e.Week > 0 {
		description += fmt.Sprintf("\nWeek: %d", e.Week)
	}

	y, mo, d := e.Date.Date()
	return model.Event{
		Title:       fmt.Sprintf("%s (%s)", e.CourseCode, groups),
		Location:    location,
		Description: description,
		Start:       time.Date(y, mo, d, e.Start.Hour, e.Start.Minute, 0, 0, loc),
		End:         time.Date(y, mo, d, e.End.Hour, e.End.Minute, 0, 0, loc),
	}
}

// CalendarMeta holds the calendar-level properties.
type CalendarMeta struct {
	ProdID   string
	Name     string
	Timezone string
}

// Encode serializes the events into a complete VCALENDAR document.
//
// Output is deterministic for a given input sequence: events keep their
// order, UIDs are derived from event content (with a numeric suffix only
// on collision) and DTSTAMP reuses the event start instead of wall-clock
// now, so re-running the pipeline yields byte-identical files.
func Encode(events []model.Event, meta CalendarMeta) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetVersion("2.0")
	cal.SetProductId(meta.ProdID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	if meta.Name != "" {
		cal.SetXWRCalName(meta.Name)
	}
	if meta.Timezone != "" {
		cal.SetXWRTimezone(meta.Timezone)
	}

	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.Title) == "" {
			return nil, fmt.Errorf("%w: event at %s", ErrEventTitle, ev.Start)
		}
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("%w: %q at %s", ErrEventTimes, ev.Title, ev.Start)
		}

		uid := uniqueUID(eventUID(ev), seen)
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(ev.Start.UTC())
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(escapeText(ev.Title))
		ve.SetLocation(escapeText(ev.Location))
		if ev.Description != "" {
			ve.SetDescription(escapeText(ev.Description))
		}
	}

	appLog.Debug("calendar encoded", "events", len(events))
	return []byte(cal.Serialize()), nil
}

// eventUID derives a stable identifier from the event's content, in the
// spirit of the classic course-group-date-time scheme.
func eventUID(ev model.Event) string {
	start := ev.Start.UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s-%s-%s@ttcal", slug(ev.Title), slug(ev.Location), start)
}

// uniqueUID de-collides a UID within one calendar by appending a counter.
// Deterministic: the same input sequence always yields the same UIDs.
func uniqueUID(uid string, seen map[string]bool) string {
	out := uid
	for n := 2; seen[out]; n++ {
		out = fmt.Sprintf("%s-%d", uid, n)
	}
	seen[out] = true
	return out
}

// slug lowercases and strips a string down to UID-safe characters.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
