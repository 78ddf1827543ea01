// Package manifest records what maestro installed into a project so that
// update and uninstall can find it again.
package manifest

import "time"

// Manifest is the on-disk install record at .maestro/manifest.json.
type Manifest struct {
	Version     string       `json:"version"`
	InstalledAt time.Time    `json:"installedAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Files       Files        `json:"files"`
	Permissions *Permissions `json:"permissions,omitempty"`
}

// Files lists installed files by kind. Paths are project-relative and
// slash separated.
type Files struct {
	Skills []string `json:"skills"`
	Agents []string `json:"agents"`
	Hooks  []string `json:"hooks"`
	Rules  []string `json:"rules,omitempty"`
}

// Permissions records the allow-list patterns install actually added, per
// scope, so uninstall can strip exactly those.
type Permissions struct {
	Project []string `json:"project,omitempty"`
	User    []string `json:"user,omitempty"`
}

// All returns every managed file in skills, agents, hooks, rules order.
func (f Files) All() []string {
	all := make([]string, 0, f.Count())
	all = append(all, f.Skills...)
	all = append(all, f.Agents...)
	all = append(all, f.Hooks...)
	all = append(all, f.Rules...)
	return all
}

// Count returns the number of managed files.
func (f Files) Count() int {
	return len(f.Skills) + len(f.Agents) + len(f.Hooks) + len(f.Rules)
}
