// Package output renders command reports in several formats (pretty,
// plain, json, yaml).
//
// The package uses a registry so the format can be picked at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// Kind names the command a report comes from.
type Kind string

const (
	KindInstall   Kind = "install"
	KindUpdate    Kind = "update"
	KindUninstall Kind = "uninstall"
	KindStatus    Kind = "status"
	KindDoctor    Kind = "doctor"
	KindHistory   Kind = "history"
	KindVersion   Kind = "version"
)

// Status is the outcome of a single report item.
type Status string

const (
	StatusOK   Status = "ok"
	StatusInfo Status = "info"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Field is one labelled summary value.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Item is one line of a section.
type Item struct {
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Section groups related items under a title.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

// Count returns how many items in s have status st.
func (s Section) Count(st Status) int {
	n := 0
	for _, it := range s.Items {
		if it.Status == st {
			n++
		}
	}
	return n
}

// Report is what every command hands to a formatter.
type Report struct {
	Kind     Kind      `json:"kind" yaml:"kind"`
	Title    string    `json:"title" yaml:"title"`
	Project  string    `json:"project,omitempty" yaml:"project,omitempty"`
	Success  bool      `json:"success" yaml:"success"`
	DryRun   bool      `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	Actions  []string  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string  `json:"errors,omitempty" yaml:"errors,omitempty"`
	// Hints are follow-up suggestions for the user.
	Hints []string `json:"hints,omitempty" yaml:"hints,omitempty"`
}

// AddField appends a labelled value.
func (r *Report) AddField(label, format string, args ...any) {
	r.Fields = append(r.Fields, Field{Label: label, Value: fmt.Sprintf(format, args...)})
}

// Tally counts items by status across all sections.
func (r *Report) Tally() map[Status]int {
	t := make(map[Status]int)
	for _, s := range r.Sections {
		for _, it := range s.Items {
			t[it.Status]++
		}
	}
	return t
}

// Formatter writes a report to a buffer.
type Formatter interface {
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, r.available())
	}
	return factory(), nil
}

// Available returns the sorted registered names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formats.
func Available() []string {
	return DefaultRegistry.Available()
}
