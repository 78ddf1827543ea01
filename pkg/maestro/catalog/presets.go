// Package catalog holds the static registries maestro installs from:
// permission presets, project-type signatures, the skill/agent/hook asset
// lists, and the external tools and MCP servers it knows how to set up.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Preset is a named, immutable bundle of permission patterns.
type Preset struct {
	ID          string
	Label       string
	Description string
	Permissions []string
	IsBase      bool
}

// BasePresetID identifies the preset included in every resolution.
const BasePresetID = "base"

func bash(cmds ...string) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = "Bash(" + c + ":*)"
	}
	return out
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var basePreset = Preset{
	ID:          BasePresetID,
	Label:       "Base",
	Description: "search, file operations, git basics, MCP wildcards",
	IsBase:      true,
	Permissions: join(
		[]string{
			"WebSearch",
			"mcp__open-websearch__*",
			"mcp__context7__*",
			"mcp__sequential-thinking__*",
		},
		bash("ls", "cat", "head", "tail", "find", "grep", "chmod", "bash", "curl", "which",
			"echo", "mkdir", "cp", "mv", "rm", "touch", "wc", "sort", "diff"),
		bash("claude mcp"),
		bash("git status", "git diff", "git log", "git add", "git commit", "git branch",
			"git checkout", "git stash", "git show", "git rev-parse", "git remote"),
		[]string{
			"WebFetch(domain:github.com)",
			"WebFetch(domain:deepwiki.com)",
			"WebFetch(domain:npmjs.com)",
			"WebFetch(domain:pypi.org)",
			"WebFetch(domain:crates.io)",
		},
	),
}

var projectPresets = []Preset{
	{
		ID:          "nodejs",
		Label:       "Node.js",
		Description: "npm, yarn, pnpm, npx, tsc, eslint, prettier, vitest, jest, playwright, next, vite",
		Permissions: bash("npm", "npx", "yarn", "pnpm", "pnpx", "node", "tsc", "tsx", "ts-node",
			"eslint", "prettier", "vitest", "jest", "playwright", "next", "vite", "rollup",
			"webpack", "esbuild", "turbo", "biome"),
	},
	{
		ID:          "python",
		Label:       "Python",
		Description: "pip, poetry, uv, pytest, ruff, mypy, black, python3, specify",
		Permissions: bash("python3", "python", "pip", "pip3", "poetry", "uv", "uvx", "pytest",
			"ruff", "mypy", "black", "isort", "flake8", "pylint", "specify", "openspec", "pdm", "hatch"),
	},
	{
		ID:          "rust",
		Label:       "Rust",
		Description: "cargo, rustc, rustup, rustfmt, clippy",
		Permissions: bash("cargo", "rustc", "rustup", "rustfmt", "cargo clippy", "cargo test",
			"cargo build", "cargo run", "cargo fmt", "cargo check", "cargo bench", "cargo doc",
			"cargo add", "cargo remove"),
	},
	{
		ID:          "general",
		Label:       "General tools",
		Description: "docker, make, cmake, ssh, wget, tar, zip, unzip, jq",
		Permissions: bash("docker", "docker-compose", "docker compose", "make", "cmake", "ssh",
			"scp", "wget", "tar", "zip", "unzip", "jq", "yq", "sed", "awk", "xargs", "env"),
	},
}

// LegacyPermissions is the fixed allow-list written by installs that ran
// without a preset selection (non-interactive installs and updates).
var LegacyPermissions = []string{
	"WebSearch",
	"mcp__open-websearch__*",
	"Bash(ls:*)",
	"Bash(claude mcp:*)",
	"Bash(chmod:*)",
	"Bash(bash:*)",
	"Bash(specify init:*)",
	"Bash(python3:*)",
	"Bash(git add:*)",
	"Bash(git commit:*)",
	"Bash(curl:*)",
	"WebFetch(domain:github.com)",
	"WebFetch(domain:deepwiki.com)",
}

// Base returns the base preset.
func Base() Preset {
	return clonePreset(basePreset)
}

// ProjectPresets returns the selectable presets in display order.
func ProjectPresets() []Preset {
	out := make([]Preset, len(projectPresets))
	for i, p := range projectPresets {
		out[i] = clonePreset(p)
	}
	return out
}

// Lookup returns the preset with the given id.
func Lookup(id string) (Preset, bool) {
	if id == BasePresetID {
		return Base(), true
	}
	for _, p := range projectPresets {
		if p.ID == id {
			return clonePreset(p), true
		}
	}
	return Preset{}, false
}

func clonePreset(p Preset) Preset {
	p.Permissions = append([]string(nil), p.Permissions...)
	return p
}

// Resolve returns the base preset's patterns followed by those of each named
// preset (unknown ids are skipped) and the trimmed, non-empty custom entries.
// Duplicates are dropped by exact string match, keeping the first occurrence.
func Resolve(presetIDs, custom []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range basePreset.Permissions {
		add(p)
	}
	for _, id := range presetIDs {
		if id == BasePresetID {
			continue
		}
		preset, ok := Lookup(id)
		if !ok {
			continue
		}
		for _, p := range preset.Permissions {
			add(p)
		}
	}
	for _, c := range custom {
		if c = strings.TrimSpace(c); c != "" {
			add(c)
		}
	}
	return out
}

// AllKnownPermissions is the union of every preset and the legacy list.
// Uninstall strips this set when no record of the installed patterns exists.
func AllKnownPermissions() []string {
	ids := make([]string, 0, len(projectPresets))
	for _, p := range projectPresets {
		ids = append(ids, p.ID)
	}
	return Resolve(ids, LegacyPermissions)
}

// Scope selects which settings files receive permissions.
type Scope string

// Permission scopes.
const (
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
	ScopeBoth    Scope = "both"
)

// ErrUnknownScope is returned by ParseScope for unrecognized values.
var ErrUnknownScope = errors.New("unknown permission scope")

// ParseScope parses a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeProject, "":
		return ScopeProject, nil
	case ScopeUser:
		return ScopeUser, nil
	case ScopeBoth:
		return ScopeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q (want project, user or both)", ErrUnknownScope, s)
	}
}

// IncludesProject reports whether the scope writes project settings.
func (s Scope) IncludesProject() bool { return s == ScopeProject || s == ScopeBoth }

// IncludesUser reports whether the scope writes user settings.
func (s Scope) IncludesUser() bool { return s == ScopeUser || s == ScopeBoth }

// Selection is a resolved permission configuration for one install.
type Selection struct {
	PresetIDs []string
	Custom    []string
	Scope     Scope
	Project   []string
	User      []string
}

// NewSelection resolves the presets and custom entries and routes the result
// to the project and/or user list according to scope.
func NewSelection(presetIDs, custom []string, scope Scope) Selection {
	resolved := Resolve(presetIDs, custom)
	sel := Selection{
		PresetIDs: append([]string(nil), presetIDs...),
		Custom:    append([]string(nil), custom...),
		Scope:     scope,
	}
	if scope.IncludesProject() {
		sel.Project = resolved
	}
	if scope.IncludesUser() {
		sel.User = append([]string(nil), resolved...)
	}
	return sel
}
