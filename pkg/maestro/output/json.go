package output

import (
	"bytes"
	"encoding/json"
)

// document is the machine-readable shape shared by json and yaml.
type document struct {
	Report  `yaml:",inline"`
	Summary map[Status]int `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func newDocument(r *Report) document {
	d := document{Report: *r}
	if t := r.Tally(); len(t) > 0 {
		d.Summary = t
	}
	return d
}

// JSONFormatter writes the report as one indented JSON document.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(newDocument(r))
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
}

var _ Formatter = (*JSONFormatter)(nil)
