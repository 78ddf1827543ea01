package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PrettyFormatter renders a report for a terminal with lipgloss styling.
type PrettyFormatter struct{}

func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	for _, s := range r.Sections {
		w.WriteString(f.formatSection(s))
	}
	if len(r.Actions) > 0 {
		w.WriteString(SectionStyle.Render("Actions"))
		w.WriteString("\n")
		for _, a := range r.Actions {
			fmt.Fprintf(w, "  %s %s\n", SuccessStyle.Render("✓"), a)
		}
	}
	f.writeList(w, "Warnings", r.Warnings, WarningStyle)
	f.writeList(w, "Errors", r.Errors, ErrorStyle)

	if len(r.Hints) > 0 {
		w.WriteString("\n")
		for _, h := range r.Hints {
			w.WriteString(MutedStyle.Render("→ " + h))
			w.WriteString("\n")
		}
	}
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Report) string {
	lines := []string{TitleStyle.Render(r.Title)}
	if r.Project != "" {
		lines = append(lines, LabelStyle.Render("Project:")+" "+ValueStyle.Render(r.Project))
	}
	if r.DryRun {
		lines = append(lines, WarningStyle.Bold(true).Render("Dry run: nothing was changed"))
	}

	width := 0
	for _, fl := range r.Fields {
		width = max(width, len(fl.Label))
	}
	for _, fl := range r.Fields {
		label := LabelStyle.Render(padRight(fl.Label+":", width+1))
		lines = append(lines, label+" "+ValueStyle.Render(fl.Value))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatSection(s Section) string {
	var sb strings.Builder
	sb.WriteString(SectionStyle.Render(s.Title))
	sb.WriteString("\n")
	if len(s.Items) == 0 {
		sb.WriteString(MutedStyle.Render("  (none)"))
		sb.WriteString("\n\n")
		return sb.String()
	}

	width := 0
	for _, it := range s.Items {
		width = max(width, len(it.Name))
	}
	for _, it := range s.Items {
		mark, style := statusMark(it.Status)
		line := fmt.Sprintf("  %s %s", style.Render(mark), padRight(it.Name, width))
		if it.Detail != "" {
			line += "  " + MutedStyle.Render(it.Detail)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func (f *PrettyFormatter) writeList(w *bytes.Buffer, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	w.WriteString("\n")
	w.WriteString(style.Render(title + ":"))
	w.WriteString("\n")
	for _, it := range items {
		w.WriteString(style.Render("  " + it))
		w.WriteString("\n")
	}
}

func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string
	if r.Success {
		parts = append(parts, SuccessStyle.Render("Done"))
	} else {
		parts = append(parts, ErrorStyle.Render("Completed with errors"))
	}

	tally := r.Tally()
	if n := tally[StatusWarn]; n > 0 {
		parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d warning(s)", n)))
	}
	if n := tally[StatusFail]; n > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d issue(s)", n)))
	}
	if n := len(r.Errors); n > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d error(s)", n)))
	}
	parts = append(parts, MutedStyle.Render("Use -o json for machine-readable output"))
	return FooterBox.Render(strings.Join(parts, "  "))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
