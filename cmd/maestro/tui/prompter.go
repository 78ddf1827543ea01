package tui

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled by user")

// Prompter runs prompts on a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompter) run(m tea.Model) (tea.Model, error) {
	var opts []tea.ProgramOption
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}

// Checklist returns the indices the user ticked.
func (p Prompter) Checklist(title string, items []Item, preselected []int) ([]int, error) {
	final, err := p.run(NewChecklistModel(title, items, preselected))
	if err != nil {
		return nil, err
	}
	m := final.(ChecklistModel)
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}

// Choice returns the index the user picked.
func (p Prompter) Choice(title string, items []Item, def int) (int, error) {
	final, err := p.run(NewChoiceModel(title, items, def))
	if err != nil {
		return 0, err
	}
	m := final.(ChoiceModel)
	if m.Cancelled() {
		return 0, ErrCancelled
	}
	return m.Chosen(), nil
}

// Entries collects free-form lines.
func (p Prompter) Entries(title, placeholder string, validate func(string) error) ([]string, error) {
	final, err := p.run(NewEntriesModel(title, placeholder, validate))
	if err != nil {
		return nil, err
	}
	m := final.(EntriesModel)
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Entries(), nil
}

// Confirm asks a yes/no question.
func (p Prompter) Confirm(question string, def bool) (bool, error) {
	final, err := p.run(NewConfirmModel(question, def))
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).Answer(), nil
}
