// Package tui provides the interactive prompts of maestro install and
// uninstall: checklists, single choice lists, free text entry and yes/no
// confirmation, built on Bubble Tea.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("39")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	mutedColor   = lipgloss.Color("245")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	uncheckedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	warningTextStyle = lipgloss.NewStyle().
				Foreground(warningColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

type keyHint struct {
	key  string
	desc string
}

func renderHelpBar(hints []keyHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.key+"]")+" "+keyDescStyle.Render(h.desc))
	}
	out := "  "
	for i, p := range parts {
		if i > 0 {
			out += "  "
		}
		out += p
	}
	return out
}
