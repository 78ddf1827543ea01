package installer

import (
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/merge"
)

// hookScriptCmd runs an installed hook script from the project root.
func hookScriptCmd(script string) string {
	return `bash "$CLAUDE_PROJECT_DIR"/` + catalog.DirHooks + "/" + script
}

func hook(tag, command string, timeout int) merge.Hook {
	return merge.Hook{
		Type:    "command",
		Command: command,
		Timeout: &timeout,
		Tag:     catalog.HookTagPrefix + tag,
	}
}

// Hooks returns the hook groups maestro injects into .claude/settings.json,
// in event order.
func Hooks() []merge.EventHooks {
	return []merge.EventHooks{
		{Event: "SessionStart", Groups: []merge.HookGroup{{
			Hooks: []merge.Hook{
				hook("session-state",
					`cat .maestro/state.json 2>/dev/null || echo '{"activeWorkflow":null}'`, 5),
				hook("session-learnings",
					`for f in .maestro/learnings/conventions.md .maestro/learnings/decisions.md .maestro/learnings/patterns.md; do [ -f "$f" ] && echo "--- $(basename $f) ---" && tail -20 "$f"; done 2>/dev/null || true`, 5),
			},
		}}},
		{Event: "PreToolUse", Groups: []merge.HookGroup{{
			Matcher: "Bash",
			Hooks:   []merge.Hook{hook("debug-statements", hookScriptCmd("detect-debug-statements.sh"), 5)},
		}}},
		{Event: "PostToolUse", Groups: []merge.HookGroup{{
			Matcher: "Edit|Write",
			Hooks: []merge.Hook{
				hook("auto-format", hookScriptCmd("auto-format.sh"), 10),
				hook("typecheck", hookScriptCmd("typecheck-after-edit.sh"), 10),
			},
		}}},
		{Event: "PreCompact", Groups: []merge.HookGroup{{
			Hooks: []merge.Hook{hook("state-snapshot", hookScriptCmd("save-state-snapshot.sh"), 5)},
		}}},
		{Event: "Stop", Groups: []merge.HookGroup{{
			Hooks: []merge.Hook{hook("stop-notice",
				`if [ -f .maestro/state.json ]; then echo 'Maestro session ended. Run the maestro-learning-extractor agent to capture learnings.' >&2; fi`, 3)},
		}}},
	}
}

// Owner returns the predicate that claims hook records as maestro's.
// Tagged records always match; legacy adds the command-substring match for
// installs made before records were tagged.
func Owner(legacy bool) merge.Owner {
	tagged := merge.TaggedOwner(catalog.HookTagPrefix)
	if !legacy {
		return tagged
	}
	return merge.AnyOwner(tagged, merge.LegacyOwner(catalog.LegacyHookMarkers))
}

// UntaggedHooks counts records an older version wrote without a tag: the
// ones the legacy match claims and the tag match does not.
func UntaggedHooks(c *merge.HookConfig) int {
	if c == nil {
		return 0
	}
	legacy, tagged := Owner(true), Owner(false)
	return merge.CountOwned(c, func(h merge.Hook) bool {
		return legacy(h) && !tagged(h)
	})
}
