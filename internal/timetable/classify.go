// Package timetable implements the extraction core: turning the noisy,
// layout-mangled text lines pulled out of a timetable PDF into structured,
// dated, group-filtered session entries.
package timetable

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind tags what a raw document line structurally looks like.
type LineKind int

const (
	// LineNoise is anything we do not recognize; noise is dropped by the
	// assembler without a diagnostic.
	LineNoise LineKind = iota
	// LineDateHeader carries a recognizable calendar date (day or week banner).
	LineDateHeader
	// LineWeekNumber is a bare week-of-semester number (its own table column
	// in the source layout).
	LineWeekNumber
	// LineGroupList consists solely of class-group labels; either the table's
	// group header row or the continuation of a split session row.
	LineGroupList
	// LineSessionRow carries a time range and therefore a class occurrence.
	LineSessionRow
)

func (k LineKind) String() string {
	switch k {
	case LineDateHeader:
		return "date-header"
	case LineWeekNumber:
		return "week-number"
	case LineGroupList:
		return "group-list"
	case LineSessionRow:
		return "session-row"
	default:
		return "noise"
	}
}

// Classified is one raw line after whitespace normalization and tagging.
type Classified struct {
	Kind LineKind
	// Text is the line with all whitespace runs collapsed to single spaces.
	Text string
	// Week is only set for LineWeekNumber.
	Week int
}

var (
	// Two HH:MM tokens joined by an ASCII hyphen, en dash or em dash, with
	// optional spacing around the separator. The renderer is not consistent
	// about any of that.
	timeRangeRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*[-\x{2013}\x{2014}]\s*(\d{1,2}):(\d{2})\b`)

	// "Donnerstag, 14. August 2025" - the source document's per-day banner.
	dayHeaderRe = regexp.MustCompile(`(?i)\b(Montag|Dienstag|Mittwoch|Donnerstag|Freitag|Samstag|Sonntag),?\s+(\d{1,2})\.\s*(\p{L}+)\s+(\d{4})\b`)

	// "Week of 11 August 2025" / "Woche vom 11. August 2025" - week banner.
	weekHeaderRe = regexp.MustCompile(`(?i)\b(?:Week\s+of|Woche\s+vom)\s+(\d{1,2})\.?\s*(\p{L}+)\s+(\d{4})\b`)

	// Numeric day form, e.g. "14.08.2025".
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)

	// A single class-group label, e.g. "25A" or "24B".
	groupLabelRe = regexp.MustCompile(`^\d{2}[A-Za-z]{1,3}$`)
)

// Classify inspects one raw text line and tags it. Classification is purely
// structural and never fails; anything unrecognized is LineNoise.
func Classify(line string) Classified {
	text := Collapse(line)
	if text == "" {
		return Classified{Kind: LineNoise, Text: text}
	}

	// Bare integer: week-of-semester column. Calendar weeks only go to 53,
	// which conveniently keeps day-of-month fragments from matching too.
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= 53 {
		return Classified{Kind: LineWeekNumber, Text: text, Week: n}
	}

	if isGroupList(text) {
		return Classified{Kind: LineGroupList, Text: text}
	}

	hasDate := dayHeaderRe.MatchString(text) || weekHeaderRe.MatchString(text) || numericDateRe.MatchString(text)
	hasTime := timeRangeRe.MatchString(text)

	// A line carrying both a date and a time range is a merged-cell artifact;
	// the time range wins so the row is not lost.
	if hasTime {
		return Classified{Kind: LineSessionRow, Text: text}
	}
	if hasDate {
		return Classified{Kind: LineDateHeader, Text: text}
	}

	return Classified{Kind: LineNoise, Text: text}
}

// Collapse normalizes all whitespace runs in a line to single spaces and
// trims the ends. Column-merge artifacts from the PDF text layer show up as
// long runs of spaces or tabs.
func Collapse(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// isGroupList reports whether every token of the line is a class-group
// label (tokens may themselves be comma-joined label lists).
func isGroupList(text string) bool {
	labels := 0
	for _, tok := range strings.Fields(text) {
		for _, part := range strings.Split(tok, ",") {
			if part == "" {
				continue
			}
			if !groupLabelRe.MatchString(part) {
				return false
			}
			labels++
		}
	}
	return labels > 0
}

// splitGroups breaks a token list into individual group labels, preserving
// document order.
func splitGroups(toks []string) []string {
	var out []string
	for _, tok := range toks {
		for _, part := range strings.Split(tok, ",") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
