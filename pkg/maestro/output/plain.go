package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter writes unstyled tab-aligned text for scripts and pipes.
type PlainFormatter struct{}

func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	fmt.Fprintf(tw, "%s\n", r.Title)
	if r.Project != "" {
		fmt.Fprintf(tw, "project:\t%s\n", r.Project)
	}
	if r.DryRun {
		fmt.Fprintf(tw, "dry-run:\ttrue\n")
	}
	for _, fl := range r.Fields {
		fmt.Fprintf(tw, "%s:\t%s\n", fl.Label, fl.Value)
	}
	for _, s := range r.Sections {
		fmt.Fprintf(tw, "\n[%s]\n", s.Title)
		for _, it := range s.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Status, it.Name, it.Detail)
		}
	}
	if len(r.Actions) > 0 {
		fmt.Fprintf(tw, "\n[actions]\n")
		for _, a := range r.Actions {
			fmt.Fprintf(tw, "%s\n", a)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(tw, "warning:\t%s\n", warn)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(tw, "error:\t%s\n", e)
	}
	for _, h := range r.Hints {
		fmt.Fprintf(tw, "hint:\t%s\n", h)
	}
	fmt.Fprintf(tw, "success:\t%t\n", r.Success)
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}

var _ Formatter = (*PlainFormatter)(nil)
