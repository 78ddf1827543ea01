package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(i int) *int { return &i }

func ourHooks() []EventHooks {
	return []EventHooks{
		{Event: "PreToolUse", Groups: []HookGroup{{
			Matcher: "Bash",
			Hooks:   []Hook{{Type: "command", Command: "bash hooks/debug.sh", Timeout: intp(5), Tag: "maestro:debug"}},
		}}},
		{Event: "Stop", Groups: []HookGroup{{
			Hooks: []Hook{{Type: "command", Command: "echo done", Timeout: intp(3), Tag: "maestro:stop"}},
		}}},
	}
}

var tagged = TaggedOwner("maestro:")

func encodeSettings(t *testing.T, s *Settings) string {
	t.Helper()
	out, err := s.Encode()
	require.NoError(t, err)
	return string(out)
}

func TestMergeHooks_EmptyDocument(t *testing.T) {
	t.Parallel()

	s := NewSettings()
	actions := MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	assert.Len(t, actions, 2)
	assert.Equal(t, []string{"PreToolUse", "Stop"}, s.Hooks.Events())
	assert.Equal(t, 2, CountOwned(s.Hooks, tagged))

	text := encodeSettings(t, s)
	assert.Contains(t, text, `"matcher": "Bash"`)
	assert.Contains(t, text, `"tag": "maestro:debug"`)
	assert.Contains(t, text, `"timeout": 5`)
}

func TestMergeHooks_Idempotent(t *testing.T) {
	t.Parallel()

	s, err := ParseSettings([]byte(`{"hooks": {"Stop": [{"hooks": [{"type": "command", "command": "say bye"}]}]}}`))
	require.NoError(t, err)

	MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	once := encodeSettings(t, s)
	MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	twice := encodeSettings(t, s)

	assert.Equal(t, once, twice)
	assert.Len(t, s.Hooks.Groups("Stop"), 2)
}

func TestMergeHooks_LeavesOtherEvents(t *testing.T) {
	t.Parallel()

	s, err := ParseSettings([]byte(`{"hooks": {"Notification": [{"hooks": [{"type": "command", "command": "notify", "tag": "maestro:old"}]}]}}`))
	require.NoError(t, err)

	MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	require.Len(t, s.Hooks.Groups("Notification"), 1, "events outside the merge set are untouched")
	assert.Equal(t, []string{"Notification", "PreToolUse", "Stop"}, s.Hooks.Events())
}

func TestRemoveHooks_MixedGroup(t *testing.T) {
	t.Parallel()

	in := `{"hooks": {"PostToolUse": [
  {"matcher": "Edit|Write", "hooks": [
    {"type": "command", "command": "prettier --write", "timeout": 10},
    {"type": "command", "command": "bash fmt.sh", "tag": "maestro:fmt"}
  ]},
  {"matcher": "Edit", "hooks": [{"type": "command", "command": "bash x.sh", "tag": "maestro:x"}]}
]}}`
	s, err := ParseSettings([]byte(in))
	require.NoError(t, err)

	removed := RemoveHooks(s.Hooks, tagged)
	assert.Equal(t, 2, removed)

	groups := s.Hooks.Groups("PostToolUse")
	require.Len(t, groups, 1)
	assert.Equal(t, "Edit|Write", groups[0].Matcher)
	require.Len(t, groups[0].Hooks, 1)
	assert.Equal(t, "prettier --write", groups[0].Hooks[0].Command)
}

func TestRemoveHooks_DeletesEmptyEvents(t *testing.T) {
	t.Parallel()

	s := NewSettings()
	MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	assert.Equal(t, 2, RemoveHooks(s.Hooks, tagged))
	assert.Empty(t, s.Hooks.Events())
	assert.True(t, IsEffectivelyEmpty(s))
}

func TestRemoveHooks_KeepsUserEmptyGroups(t *testing.T) {
	t.Parallel()

	s, err := ParseSettings([]byte(`{"hooks": {"Stop": [{"matcher": "", "hooks": []}]}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, RemoveHooks(s.Hooks, tagged))
	assert.Len(t, s.Hooks.Groups("Stop"), 1)
}

func TestHooks_RoundTrip(t *testing.T) {
	t.Parallel()

	in := `{"hooks": {"Stop": [{"hooks": [{"type": "command", "command": "say bye"}]}]}, "model": "x"}`
	clean, err := ParseSettings([]byte(in))
	require.NoError(t, err)
	MergeHooks(clean.EnsureHooks(), ourHooks(), tagged)
	want := encodeSettings(t, clean)

	s, err := ParseSettings([]byte(in))
	require.NoError(t, err)
	MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	RemoveHooks(s.Hooks, tagged)

	back, err := ParseSettings([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, encodeSettings(t, back), encodeSettings(t, s), "remove restores the original entries")

	MergeHooks(s.EnsureHooks(), ourHooks(), tagged)
	assert.Equal(t, want, encodeSettings(t, s))
}

func TestLegacyOwner(t *testing.T) {
	t.Parallel()

	in := `{"hooks": {"SessionStart": [{"hooks": [
  {"type": "command", "command": "cat .maestro/state.json 2>/dev/null"},
  {"type": "command", "command": "echo user"}
]}], "PreToolUse": [{"matcher": "Bash", "hooks": [
  {"type": "command", "command": "bash \"$CLAUDE_PROJECT_DIR\"/.claude/hooks/maestro/detect-debug-statements.sh"}
]}]}}`
	s, err := ParseSettings([]byte(in))
	require.NoError(t, err)

	legacy := LegacyOwner([]string{".claude/hooks/maestro/", "maestro/state.json", "maestro/learnings/"})
	assert.Equal(t, 0, RemoveHooks(s.Hooks, tagged), "untagged records are not claimed by tag")

	removed := RemoveHooks(s.Hooks, AnyOwner(tagged, legacy))
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"SessionStart"}, s.Hooks.Events())
	require.Len(t, s.Hooks.Groups("SessionStart")[0].Hooks, 1)
	assert.Equal(t, "echo user", s.Hooks.Groups("SessionStart")[0].Hooks[0].Command)
}
