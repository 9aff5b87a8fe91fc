package timetable

import "strings"

// MatchGroup decides whether a stored class-group label applies to the
// target label a student asked for.
//
// The rule: exact match always wins; otherwise the target may name a whole
// family, i.e. it is a proper prefix of the stored label and the prefix
// ends at the family boundary. With sep == "" the boundary is the
// digit-to-letter transition inside a label, so target "25" covers "25A"
// and "25B" while "25A" does not cover "25AB". With a non-empty sep the
// stored label must continue with exactly that separator after the prefix.
func MatchGroup(target, group, sep string) bool {
	if target == "" || group == "" {
		return false
	}
	if strings.EqualFold(target, group) {
		return true
	}
	if len(target) >= len(group) {
		return false
	}
	if !strings.EqualFold(group[:len(target)], target) {
		return false
	}
	suffix := group[len(target):]
	if sep != "" {
		return strings.HasPrefix(suffix, sep)
	}
	// Digit-to-letter boundary: the target must end its numeric stem and
	// the stored label continue with the cohort letter(s).
	last := target[len(target)-1]
	return isDigit(last) && !isDigit(suffix[0])
}

// MatchAnyGroup reports whether any of the entry's group labels matches
// the target.
func MatchAnyGroup(target string, groups []string, sep string) bool {
	for _, g := range groups {
		if MatchGroup(target, g, sep) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
