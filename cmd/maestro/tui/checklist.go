package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Item is one selectable line.
type Item struct {
	Label  string
	Detail string
}

// ChecklistModel lets the user tick any number of items.
type ChecklistModel struct {
	title     string
	items     []Item
	cursor    int
	selected  map[int]bool
	done      bool
	cancelled bool
}

// NewChecklistModel creates a checklist with the given items pre-ticked.
func NewChecklistModel(title string, items []Item, preselected []int) ChecklistModel {
	m := ChecklistModel{
		title:    title,
		items:    items,
		selected: make(map[int]bool),
	}
	for _, i := range preselected {
		if i >= 0 && i < len(items) {
			m.selected[i] = true
		}
	}
	return m
}

func (m ChecklistModel) Init() tea.Cmd { return nil }

func (m ChecklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		cmd := m.HandleKey(key.String())
		return m, cmd
	}
	return m, nil
}

// HandleKey applies one key press.
func (m *ChecklistModel) HandleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ", "x":
		m.Toggle(m.cursor)
	case "a":
		m.SelectAll()
	case "n":
		m.SelectNone()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
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

// Toggle flips item i.
func (m *ChecklistModel) Toggle(i int) {
	if i < 0 || i >= len(m.items) {
		return
	}
	if m.selected[i] {
		delete(m.selected, i)
	} else {
		m.selected[i] = true
	}
}

// SelectAll ticks every item.
func (m *ChecklistModel) SelectAll() {
	for i := range m.items {
		m.selected[i] = true
	}
}

// SelectNone clears every tick.
func (m *ChecklistModel) SelectNone() {
	m.selected = make(map[int]bool)
}

// Selected returns the ticked indices in order.
func (m ChecklistModel) Selected() []int {
	out := make([]int, 0, len(m.selected))
	for i := range m.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Cancelled reports whether the user backed out.
func (m ChecklistModel) Cancelled() bool { return m.cancelled }

func (m ChecklistModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, it := range m.items {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		box := uncheckedStyle.Render("[ ]")
		if m.selected[i] {
			box = checkedStyle.Render("[x]")
		}
		b.WriteString(pointer + box + " " + it.Label)
		if it.Detail != "" {
			b.WriteString("  " + mutedTextStyle.Render(it.Detail))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHelpBar([]keyHint{
		{"Space", "Toggle"}, {"a", "All"}, {"n", "None"}, {"Enter", "Confirm"}, {"Esc", "Cancel"},
	}))
	b.WriteString("\n")
	return b.String()
}
