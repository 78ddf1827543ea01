package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks a yes/no question.
type ConfirmModel struct {
	question string
	answer   bool
	done     bool
}

// NewConfirmModel creates a question whose Enter answer is def.
func NewConfirmModel(question string, def bool) ConfirmModel {
	return ConfirmModel{question: question, answer: def}
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		cmd := m.HandleKey(key.String())
		return m, cmd
	}
	return m, nil
}

// HandleKey applies one key press.
func (m *ConfirmModel) HandleKey(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		m.answer = true
	case "n", "N", "esc", "ctrl+c":
		m.answer = false
	case "enter":
	default:
		return nil
	}
	m.done = true
	return tea.Quit
}

// Answer returns the decision.
func (m ConfirmModel) Answer() bool { return m.answer }

func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}
	hint := "[y/N]"
	if m.answer {
		hint = "[Y/n]"
	}
	return titleStyle.Render(m.question) + " " + mutedTextStyle.Render(hint) + "\n"
}
