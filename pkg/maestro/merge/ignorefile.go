package merge

import "strings"

// HasLine reports whether any line of text, trimmed, equals line.
func HasLine(text, line string) bool {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

// MergeIgnore appends block (its first line is the presence marker) to
// text unless the marker is already there as a line. It reports whether
// the text changed.
func MergeIgnore(text string, block []string) (string, bool) {
	if len(block) == 0 || HasLine(text, block[0]) {
		return text, false
	}
	joined := strings.Join(block, "\n") + "\n"
	trimmed := strings.TrimRight(text, " \t\r\n")
	if trimmed == "" {
		return joined, true
	}
	return trimmed + "\n\n" + joined, true
}

// RemoveIgnore deletes each line whose trimmed content equals a block
// line. Every other line, blank ones included, stays where it was. It
// returns the number of lines removed.
func RemoveIgnore(text string, block []string) (string, int) {
	drop := make(map[string]struct{}, len(block))
	for _, l := range block {
		drop[l] = struct{}{}
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	removed := 0
	for _, l := range lines {
		if _, ok := drop[strings.TrimSpace(l)]; ok {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	if removed == 0 {
		return text, 0
	}
	return strings.Join(kept, "\n"), removed
}
