package timetable

import (
	"errors"
	"strings"
	"time"

	appLog "ttcal/internal/log"
	"ttcal/internal/model"
)

// Header/anchor errors surfaced only as diagnostics.
var (
	// ErrAnchorRollback marks a date header that would move the anchor
	// backwards; anchors only advance within one document pass.
	ErrAnchorRollback = errors.New("date header rolls the anchor backward")
)

// Options configures a single assembly pass.
type Options struct {
	// TargetGroup filters entries to one class-group label; empty keeps
	// everything.
	TargetGroup string
	// GroupSeparator is forwarded to the group filter (see MatchGroup).
	GroupSeparator string
	// Rules configures the row parser.
	Rules Rules
}

// DatedEntry is a session entry with its weekday resolved to a concrete
// calendar date (midnight, no zone; the event mapper applies the zone).
type DatedEntry struct {
	model.SessionEntry
	Date time.Time
}

// Result is the outcome of one assembly pass: the filtered entries in
// document order plus everything that had to be skipped.
type Result struct {
	Entries     []DatedEntry
	Diagnostics []model.Diagnostic
}

// pendingRow holds a session row that parsed clean except for its group
// labels, waiting for at most one continuation line. Any recognized line
// other than a group list flushes it as a diagnostic; unrecognized noise
// is skipped without flushing, since the renderer pads split rows with
// page furniture but never with schedule content.
type pendingRow struct {
	entry model.SessionEntry
	page  int
	line  int
	text  string
}

// Assemble runs the extraction state machine over all pages of the
// document. The pass is strictly sequential: the anchor and week-number
// context only ever come from lines already seen. A malformed row, header
// or missing anchor produces a diagnostic, never an abort.
func Assemble(pages [][]string, opts Options) Result {
	var res Result
	var anchor Anchor
	var pending *pendingRow
	week := 0

	flushPending := func() {
		if pending == nil {
			return
		}
		res.diag(pending.page, pending.line, pending.text, ErrMissingGroups)
		pending = nil
	}

	for p, lines := range pages {
		for l, raw := range lines {
			page, lineNo := p+1, l+1
			c := Classify(raw)

			switch c.Kind {
			case LineNoise:
				continue

			case LineWeekNumber:
				flushPending()
				week = c.Week

			case LineDateHeader:
				flushPending()
				next, err := ParseDateHeader(c.Text)
				if err != nil {
					res.diag(page, lineNo, c.Text, err)
					continue
				}
				if anchor.Valid() && next.Ref.Before(anchor.Ref) {
					res.diag(page, lineNo, c.Text, ErrAnchorRollback)
					continue
				}
				anchor = next

			case LineGroupList:
				if pending == nil {
					// The table's group header row; context we do not
					// need at row level, not an error.
					continue
				}
				pending.entry.Groups = splitGroups(strings.Fields(c.Text))
				entry := pending.entry
				page, lineNo, text := pending.page, pending.line, pending.text
				pending = nil
				res.finish(entry, anchor, week, opts, page, lineNo, text)

			case LineSessionRow:
				flushPending()
				entry, err := ParseRow(c.Text, opts.Rules)
				if errors.Is(err, ErrMissingGroups) {
					// Bounded continuation: the labels may be on the
					// next line if the renderer split the row.
					pending = &pendingRow{entry: entry, page: page, line: lineNo, text: c.Text}
					continue
				}
				if err != nil {
					res.diag(page, lineNo, c.Text, err)
					continue
				}
				res.finish(entry, anchor, week, opts, page, lineNo, c.Text)
			}
		}
	}
	flushPending()

	appLog.Debug("assembly finished",
		"entries", len(res.Entries),
		"skipped", len(res.Diagnostics),
	)
	return res
}

// finish resolves, filters and appends one fully parsed entry.
func (r *Result) finish(entry model.SessionEntry, anchor Anchor, week int, opts Options, page, lineNo int, text string) {
	date, err := anchor.Resolve(entry.Weekday, entry.HasWeekday)
	if err != nil {
		r.diag(page, lineNo, text, err)
		return
	}
	entry.Week = week
	if opts.TargetGroup != "" && !MatchAnyGroup(opts.TargetGroup, entry.Groups, opts.GroupSeparator) {
		return
	}
	r.Entries = append(r.Entries, DatedEntry{SessionEntry: entry, Date: date})
}

func (r *Result) diag(page, lineNo int, text string, err error) {
	r.Diagnostics = append(r.Diagnostics, model.Diagnostic{
		Page: page,
		Line: lineNo,
		Text: text,
		Err:  err,
	})
}
