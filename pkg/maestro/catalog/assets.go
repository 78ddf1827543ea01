package catalog

import (
	"path"
	"strings"
)

// Command skills are invoked as slash commands inside Claude Code.
var CommandSkills = []string{
	"maestro-go",
	"maestro-init",
	"maestro-plan",
	"maestro-execute",
	"maestro-consult",
	"maestro-status",
	"maestro-review",
	"maestro-debug",
	"maestro-verify",
	"maestro-context",
	"maestro-tools",
}

// Knowledge skills are loaded on demand by the command skills.
var KnowledgeSkills = []string{
	"maestro-workflow-routing",
	"maestro-mcp-protocols",
	"maestro-token-management",
	"maestro-role-prompts",
	"maestro-contexts",
	"maestro-learning",
	"maestro-prompt-enhance",
	"maestro-rules-guide",
}

// Agents are installed as .claude/agents/<name>.md.
var Agents = []string{
	"maestro-context-curator",
	"maestro-model-coordinator",
	"maestro-quality-gate",
	"maestro-workflow-detector",
	"maestro-verifier",
	"maestro-learning-extractor",
}

// HookScripts are installed executable under .claude/hooks/maestro.
var HookScripts = []string{
	"auto-format.sh",
	"typecheck-after-edit.sh",
	"detect-debug-statements.sh",
	"save-state-snapshot.sh",
	"detect-project-state.sh",
	"check-deps.sh",
}

// RuleLangs are the language-specific rule sets.
var RuleLangs = []string{"typescript", "python", "rust"}

// AllSkills returns command skills followed by knowledge skills.
func AllSkills() []string {
	return join(CommandSkills, KnowledgeSkills)
}

// IsRuleLang reports whether lang names a known rule set.
func IsRuleLang(lang string) bool {
	for _, l := range RuleLangs {
		if l == lang {
			return true
		}
	}
	return false
}

// Project-relative directories, slash separated.
const (
	DirClaude        = ".claude"
	DirSkills        = ".claude/skills"
	DirAgents        = ".claude/agents"
	DirHooksRoot     = ".claude/hooks"
	DirHooks         = ".claude/hooks/maestro"
	DirRules         = ".claude/rules"
	DirRuntime       = ".maestro"
	DirSummaries     = ".maestro/summaries"
	DirConsultations = ".maestro/consultations"
	DirLearnings     = ".maestro/learnings"
	DirTemplates     = ".maestro/templates"
)

// Files maestro reads or edits in place.
const (
	ProjectSettings      = ".claude/settings.json"
	ProjectLocalSettings = ".claude/settings.local.json"
	UserLocalSettings    = ".claude/settings.local.json" // relative to the home root
	InstructionsFile     = "CLAUDE.md"
	IgnoreFile           = ".gitignore"
	RuntimeConfig        = ".maestro/config.json"
	RuntimeState         = ".maestro/state.json"
	ManifestFile         = ".maestro/manifest.json"
)

// InstallDirs are created by every install, in order.
var InstallDirs = []string{
	DirSkills,
	DirAgents,
	DirHooks,
	DirRuntime,
	DirSummaries,
	DirConsultations,
	DirLearnings,
	DirTemplates,
}

// UserDataPaths belong to the user and are never removed by update or
// uninstall (only an explicit purge drops them with the runtime dir).
// Entries ending in "/" protect a whole directory.
var UserDataPaths = []string{
	RuntimeConfig,
	RuntimeState,
	DirLearnings + "/",
}

// IsUserData reports whether the slash-separated relative path p is, or is
// inside, a protected user-data path.
func IsUserData(p string) bool {
	p = path.Clean(strings.TrimPrefix(p, "./"))
	for _, u := range UserDataPaths {
		if strings.HasSuffix(u, "/") {
			dir := strings.TrimSuffix(u, "/")
			if p == dir || strings.HasPrefix(p, u) {
				return true
			}
			continue
		}
		if p == u {
			return true
		}
	}
	return false
}

// Delimited CLAUDE.md section markers. The begin line carries a version
// suffix and is matched by prefix.
const (
	SectionBegin = "<!-- MAESTRO:BEGIN"
	SectionEnd   = "<!-- MAESTRO:END -->"
)

// IgnoreMarker heads the block maestro appends to .gitignore.
const IgnoreMarker = "# Maestro runtime (auto-managed)"

// IgnoreBlock is the full .gitignore block, marker first.
var IgnoreBlock = []string{
	IgnoreMarker,
	".maestro/state.json",
	".maestro/consultations/",
	".maestro/learnings/",
	".maestro/*.snapshot-*.json",
}

// HookTagPrefix namespaces the tag field on injected hook records.
const HookTagPrefix = "maestro:"

// LegacyHookMarkers identify hook commands written before tagging.
var LegacyHookMarkers = []string{
	".claude/hooks/maestro/",
	"maestro/state.json",
	"maestro/learnings/",
}
