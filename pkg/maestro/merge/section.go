package merge

import "strings"

// SectionOutcome says how MergeSection changed the text.
type SectionOutcome int

const (
	// SectionCreated means the text was empty and now holds only the section.
	SectionCreated SectionOutcome = iota
	// SectionReplaced means an existing section was swapped out in place.
	SectionReplaced
	// SectionAppended means the section was added after existing content.
	SectionAppended
)

func (o SectionOutcome) String() string {
	switch o {
	case SectionCreated:
		return "created"
	case SectionReplaced:
		return "replaced"
	default:
		return "appended"
	}
}

// Markers delimit the owned span of a document. Begin is matched as a
// prefix so a versioned begin line ("<!-- X:BEGIN v1.2 -->") is found.
type Markers struct {
	Begin string
	End   string
}

// Wrap renders body between the markers, stamping version on the begin line.
func (m Markers) Wrap(body, version string) string {
	body = strings.TrimRight(body, "\r\n")
	return m.Begin + " v" + version + " -->\n" + body + "\n" + m.End
}

// span locates the owned section: the offset of the begin marker and the
// offset just past the end marker. The begin is the last one before the
// first end that has one, so an orphaned begin line earlier in the text
// never widens the span over user content.
func (m Markers) span(text string) (int, int, bool) {
	from := 0
	for {
		rel := strings.Index(text[from:], m.End)
		if rel < 0 {
			return 0, 0, false
		}
		end := from + rel
		if begin := strings.LastIndex(text[:end], m.Begin); begin >= 0 {
			return begin, end + len(m.End), true
		}
		from = end + len(m.End)
	}
}

// Contains reports whether text holds a complete section.
func (m Markers) Contains(text string) bool {
	_, _, ok := m.span(text)
	return ok
}

// Version returns the version stamped on the begin line, if any.
func (m Markers) Version(text string) (string, bool) {
	begin, _, ok := m.span(text)
	if !ok {
		return "", false
	}
	line := text[begin+len(m.Begin):]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "-->"))
	return strings.TrimPrefix(line, "v"), true
}

// MergeSection installs body as the owned section of text. An existing
// section is replaced in place with everything outside it kept byte for
// byte; otherwise the section is appended after a blank line, or becomes
// the whole document when text is empty.
func MergeSection(text, body, version string, m Markers) (string, SectionOutcome) {
	wrapped := m.Wrap(body, version)
	if begin, end, ok := m.span(text); ok {
		return text[:begin] + wrapped + text[end:], SectionReplaced
	}
	trimmed := strings.TrimRight(text, " \t\r\n")
	if trimmed == "" {
		return wrapped + "\n", SectionCreated
	}
	return trimmed + "\n\n" + wrapped + "\n", SectionAppended
}

// RemoveSection cuts the owned section out of text. The remaining sides
// are joined by one blank line when both are non-empty. It reports false,
// and returns text unchanged, when no section is present. An empty result
// means nothing but the section was there.
func RemoveSection(text string, m Markers) (string, bool) {
	begin, end, ok := m.span(text)
	if !ok {
		return text, false
	}
	before := strings.TrimRight(text[:begin], " \t\r\n")
	after := strings.Trim(text[end:], " \t\r\n")

	var b strings.Builder
	b.WriteString(before)
	if after != "" {
		if before != "" {
			b.WriteString("\n\n")
		}
		b.WriteString(after)
	}
	if b.Len() == 0 {
		return "", true
	}
	b.WriteString("\n")
	return b.String(), true
}
