package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ChoiceModel lets the user pick exactly one item.
type ChoiceModel struct {
	title     string
	items     []Item
	cursor    int
	done      bool
	cancelled bool
}

// NewChoiceModel creates a single choice list starting at index def.
func NewChoiceModel(title string, items []Item, def int) ChoiceModel {
	if def < 0 || def >= len(items) {
		def = 0
	}
	return ChoiceModel{title: title, items: items, cursor: def}
}

func (m ChoiceModel) Init() tea.Cmd { return nil }

func (m ChoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		cmd := m.HandleKey(key.String())
		return m, cmd
	}
	return m, nil
}

// HandleKey applies one key press.
func (m *ChoiceModel) HandleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return tea.Quit
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return tea.Quit
	}
	return nil
}

// Chosen returns the picked index.
func (m ChoiceModel) Chosen() int { return m.cursor }

// Cancelled reports whether the user backed out.
func (m ChoiceModel) Cancelled() bool { return m.cancelled }

func (m ChoiceModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, it := range m.items {
		line := "  ( ) " + it.Label
		if i == m.cursor {
			line = cursorStyle.Render("> (•) " + it.Label)
		}
		b.WriteString(line)
		if it.Detail != "" {
			b.WriteString("  " + mutedTextStyle.Render(it.Detail))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHelpBar([]keyHint{{"↑/↓", "Move"}, {"Enter", "Choose"}, {"Esc", "Cancel"}}))
	b.WriteString("\n")
	return b.String()
}
