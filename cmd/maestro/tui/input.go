package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EntriesModel collects free-form entries one per line until an empty
// line is submitted.
type EntriesModel struct {
	title     string
	input     textinput.Model
	entries   []string
	validate  func(string) error
	problem   string
	done      bool
	cancelled bool
}

// NewEntriesModel creates an entry prompt. validate may be nil.
func NewEntriesModel(title, placeholder string, validate func(string) error) EntriesModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()
	return EntriesModel{title: title, input: ti, validate: validate}
}

func (m EntriesModel) Init() tea.Cmd { return textinput.Blink }

func (m EntriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return m, m.submit()
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit adds the current line, or finishes on an empty one.
func (m *EntriesModel) submit() tea.Cmd {
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		m.done = true
		return tea.Quit
	}
	if m.validate != nil {
		if err := m.validate(v); err != nil {
			m.problem = err.Error()
			return nil
		}
	}
	m.problem = ""
	m.entries = append(m.entries, v)
	m.input.SetValue("")
	return nil
}

// Entries returns what was entered.
func (m EntriesModel) Entries() []string { return m.entries }

// Cancelled reports whether the user backed out.
func (m EntriesModel) Cancelled() bool { return m.cancelled }

func (m EntriesModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for _, e := range m.entries {
		b.WriteString(checkedStyle.Render("  + ") + e + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	if m.problem != "" {
		b.WriteString(warningTextStyle.Render("  "+m.problem) + "\n")
	}
	b.WriteString(mutedTextStyle.Render("  Enter adds a line; an empty line finishes."))
	b.WriteString("\n")
	return b.String()
}
