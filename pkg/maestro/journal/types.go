package journal

import "time"

// Operation names a journaled command.
type Operation string

const (
	OpInstall   Operation = "install"
	OpUpdate    Operation = "update"
	OpUninstall Operation = "uninstall"
)

// Entry is one journaled run.
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Operation Operation `json:"operation" yaml:"operation"`
	Project   string    `json:"project" yaml:"project"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Success   bool      `json:"success" yaml:"success"`
	Actions   []string  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Errors    []string  `json:"errors,omitempty" yaml:"errors,omitempty"`
}
