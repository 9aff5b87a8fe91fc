package ics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"ttcal/internal/model"
	"ttcal/internal/timetable"
)

var vienna = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		panic(err)
	}
	return loc
}()

func testEntry() timetable.DatedEntry {
	return timetable.DatedEntry{
		SessionEntry: model.SessionEntry{
			CourseCode: "OOP",
			Room:       "IE306",
			Start:      model.TimeOfDay{Hour: 17, Minute: 30},
			End:        model.TimeOfDay{Hour: 19, Minute: 0},
			Groups:     []string{"25A", "25B"},
			Week:       33,
		},
		Date: time.Date(2025, time.August, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestMapEvent(t *testing.T) {
	m := Mapping{Location: vienna, RemoteLocation: "Microsoft Teams (Online)"}

	ev := MapEvent(testEntry(), m)
	if ev.Title != "OOP (25A,25B)" {
		t.Errorf("title = %q", ev.Title)
	}
	if ev.Location != "IE306" {
		t.Errorf("location = %q", ev.Location)
	}
	want := time.Date(2025, time.August, 14, 17, 30, 0, 0, vienna)
	if !ev.Start.Equal(want) {
		t.Errorf("start = %v, want %v", ev.Start, want)
	}
	if got := ev.End.Sub(ev.Start); got != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", got)
	}
	if !strings.Contains(ev.Description, "Room: IE306") {
		t.Errorf("description = %q", ev.Description)
	}
	if !strings.Contains(ev.Description, "Week: 33") {
		t.Errorf("description missing week: %q", ev.Description)
	}
}

func TestMapEventRemote(t *testing.T) {
	m := Mapping{Location: vienna, RemoteLocation: "Microsoft Teams (Online)"}

	entry := testEntry()
	entry.Room = ""
	entry.Remote = true

	ev := MapEvent(entry, m)
	if ev.Location != "Microsoft Teams (Online)" {
		t.Errorf("location = %q", ev.Location)
	}
	if !strings.Contains(ev.Description, "Online class") {
		t.Errorf("description = %q", ev.Description)
	}
}

func testEvents() []model.Event {
	m := Mapping{Location: vienna, RemoteLocation: "Online"}
	first := testEntry()

	second := testEntry()
	second.CourseCode = "DBS"
	second.Room = "IE210"
	second.Start = model.TimeOfDay{Hour: 8, Minute: 0}
	second.End = model.TimeOfDay{Hour: 9, Minute: 30}

	return []model.Event{MapEvent(first, m), MapEvent(second, m)}
}

func TestEncodeStructure(t *testing.T) {
	data, err := Encode(testEvents(), CalendarMeta{
		ProdID:   "-//ttcal//Timetable Parser//EN",
		Name:     "University Timetable",
		Timezone: "Europe/Vienna",
	})
	if err != nil {
		t.Fatal(err)
	}

	s := string(data)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ttcal//Timetable Parser//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:University Timetable",
		"X-WR-TIMEZONE:Europe/Vienna",
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	events := testEvents()
	data, err := Encode(events, CalendarMeta{ProdID: "-//ttcal//test//EN"})
	if err != nil {
		t.Fatal(err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("re-parsing own output: %v", err)
	}

	parsed := cal.Events()
	if len(parsed) != len(events) {
		t.Fatalf("parsed %d events, want %d", len(parsed), len(events))
	}

	seenUIDs := make(map[string]bool)
	for i, ve := range parsed {
		uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
		if uid == nil || uid.Value == "" {
			t.Fatal("event without UID")
		}
		if seenUIDs[uid.Value] {
			t.Fatalf("duplicate UID %q", uid.Value)
		}
		seenUIDs[uid.Value] = true

		summary := unescapeText(ve.GetProperty(ical.ComponentPropertySummary).Value)
		if summary != events[i].Title {
			t.Errorf("summary = %q, want %q", summary, events[i].Title)
		}
		location := unescapeText(ve.GetProperty(ical.ComponentPropertyLocation).Value)
		if location != events[i].Location {
			t.Errorf("location = %q, want %q", location, events[i].Location)
		}

		start, err := ve.GetStartAt()
		if err != nil {
			t.Fatal(err)
		}
		if !start.Equal(events[i].Start) {
			t.Errorf("start = %v, want %v", start, events[i].Start)
		}
		end, err := ve.GetEndAt()
		if err != nil {
			t.Fatal(err)
		}
		if !end.Equal(events[i].End) {
			t.Errorf("end = %v, want %v", end, events[i].End)
		}
	}
}

func TestEncodeIdempotent(t *testing.T) {
	events := testEvents()
	meta := CalendarMeta{ProdID: "-//ttcal//test//EN", Name: "T", Timezone: "Europe/Vienna"}

	first, err := Encode(events, meta)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encode(events, meta)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("encoding the same events twice produced different bytes")
	}
}

func TestEncodeUIDCollision(t *testing.T) {
	// Two identical events (same course, room, time) must still get
	// distinct UIDs within one file.
	events := testEvents()
	events[1] = events[0]

	data, err := Encode(events, CalendarMeta{ProdID: "-//ttcal//test//EN"})
	if err != nil {
		t.Fatal(err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	uids := make(map[string]bool)
	for _, ve := range cal.Events() {
		uids[ve.GetProperty(ical.ComponentPropertyUniqueId).Value] = true
	}
	if len(uids) != 2 {
		t.Fatalf("got %d distinct UIDs, want 2", len(uids))
	}
}

func TestEncodeRejectsBadEvents(t *testing.T) {
	good := testEvents()[0]

	noTitle := good
	noTitle.Title = "  "

	badTimes := good
	badTimes.End = badTimes.Start

	tests := []struct {
		name string
		ev   model.Event
		want error
	}{
		{"empty title", noTitle, ErrEventTitle},
		{"end not after start", badTimes, ErrEventTimes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode([]model.Event{tt.ev}, CalendarMeta{ProdID: "x"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeEscapesText(t *testing.T) {
	ev := testEvents()[0]
	ev.Title = "OOP; Lab, Part 1"
	ev.Location = "Room A, Building 2"

	data, err := Encode([]model.Event{ev}, CalendarMeta{ProdID: "x"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `OOP\; Lab\, Part 1`) {
		t.Errorf("summary not escaped:\n%s", s)
	}
	if !strings.Contains(s, `Room A\, Building 2`) {
		t.Errorf("location not escaped:\n%s", s)
	}
}
