package ics

import "strings"

// iCalendar TEXT value escaping (RFC 5545 3.3.11). Kept in one place so
// nothing outside this package ever deals with wire-format quoting; the
// underlying library folds long lines but does not escape values on write.

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// escapeText escapes a string for use as an iCalendar TEXT property value.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// unescapeText reverses escapeText. Used when reading property values back
// out of a parsed calendar (round-trip checks, downstream consumers).
func unescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case '\\', ';', ',':
			b.WriteByte(s[i])
		default:
			// Unknown escape; keep it verbatim.
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
