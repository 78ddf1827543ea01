package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("base only when nothing selected", func(t *testing.T) {
		t.Parallel()
		got := Resolve(nil, nil)
		assert.Equal(t, Base().Permissions, got)
	})

	t.Run("includes base, preset and custom without duplicates", func(t *testing.T) {
		t.Parallel()
		got := Resolve([]string{"nodejs"}, []string{"Custom(x:*)"})

		node, ok := Lookup("nodejs")
		require.True(t, ok)
		for _, p := range Base().Permissions {
			assert.Contains(t, got, p)
		}
		for _, p := range node.Permissions {
			assert.Contains(t, got, p)
		}
		assert.Contains(t, got, "Custom(x:*)")
		assertUnique(t, got)
	})

	t.Run("same set regardless of preset order", func(t *testing.T) {
		t.Parallel()
		a := Resolve([]string{"rust", "python"}, []string{"X"})
		b := Resolve([]string{"python", "rust"}, []string{"X"})
		assert.ElementsMatch(t, a, b)
	})

	t.Run("first seen order base then presets then custom", func(t *testing.T) {
		t.Parallel()
		got := Resolve([]string{"rust"}, []string{"Zed(a:*)"})
		base := Base().Permissions
		assert.Equal(t, base, got[:len(base)])
		assert.Equal(t, "Bash(cargo:*)", got[len(base)])
		assert.Equal(t, "Zed(a:*)", got[len(got)-1])
	})

	t.Run("unknown ids ignored and custom trimmed", func(t *testing.T) {
		t.Parallel()
		got := Resolve([]string{"cobol"}, []string{"  Bash(go:*) ", "", "   ", "WebSearch"})
		assert.Len(t, got, len(Base().Permissions)+1)
		assert.Contains(t, got, "Bash(go:*)")
	})

	t.Run("dedup is case sensitive", func(t *testing.T) {
		t.Parallel()
		got := Resolve(nil, []string{"websearch"})
		assert.Contains(t, got, "WebSearch")
		assert.Contains(t, got, "websearch")
	})
}

func TestAllKnownPermissions(t *testing.T) {
	t.Parallel()

	all := AllKnownPermissions()
	assertUnique(t, all)
	for _, p := range ProjectPresets() {
		for _, perm := range p.Permissions {
			assert.Contains(t, all, perm)
		}
	}
	for _, perm := range LegacyPermissions {
		assert.Contains(t, all, perm)
	}
}

func TestPresetsAreImmutable(t *testing.T) {
	t.Parallel()

	p := Base()
	p.Permissions[0] = "mutated"
	assert.NotEqual(t, "mutated", Base().Permissions[0])
}

func TestExactlyOneBasePreset(t *testing.T) {
	t.Parallel()

	count := 0
	if Base().IsBase {
		count++
	}
	for _, p := range ProjectPresets() {
		if p.IsBase {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNewSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope       Scope
		wantProject bool
		wantUser    bool
	}{
		{ScopeProject, true, false},
		{ScopeUser, false, true},
		{ScopeBoth, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			t.Parallel()
			sel := NewSelection([]string{"general"}, nil, tt.scope)
			assert.Equal(t, tt.wantProject, len(sel.Project) > 0)
			assert.Equal(t, tt.wantUser, len(sel.User) > 0)
		})
	}
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeProject, s)

	s, err = ParseScope("BOTH")
	require.NoError(t, err)
	assert.Equal(t, ScopeBoth, s)

	_, err = ParseScope("global")
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestDetectProjectTypes(t *testing.T) {
	t.Parallel()

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, DetectProjectTypes(t.TempDir()))
	})

	t.Run("multiple types cite first marker", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		touch(t, dir, "package.json")
		touch(t, dir, "docker-compose.yml")
		touch(t, dir, "Dockerfile")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "node_modules"), 0o755))

		got := DetectProjectTypes(dir)
		assert.Equal(t, []Detection{
			{Type: "nodejs", DetectedBy: "package.json"},
			{Type: "general", DetectedBy: "Dockerfile"},
		}, got)
		assert.Equal(t, []string{"nodejs", "general"}, DetectedIDs(got))
	})

	t.Run("directory markers count", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "node_modules"), 0o755))
		got := DetectProjectTypes(dir)
		require.Len(t, got, 1)
		assert.Equal(t, "node_modules", got[0].DetectedBy)
	})
}

func TestIsUserData(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUserData(".maestro/config.json"))
	assert.True(t, IsUserData(".maestro/state.json"))
	assert.True(t, IsUserData(".maestro/learnings"))
	assert.True(t, IsUserData(".maestro/learnings/patterns.md"))
	assert.True(t, IsUserData("./.maestro/learnings/../learnings/x.md"))
	assert.False(t, IsUserData(".maestro/manifest.json"))
	assert.False(t, IsUserData(".claude/skills/maestro-go/SKILL.md"))
}

func TestAssetCounts(t *testing.T) {
	t.Parallel()

	assert.Len(t, AllSkills(), 19)
	assert.Len(t, Agents, 6)
	assert.Len(t, HookScripts, 6)
	assert.True(t, IsRuleLang("rust"))
	assert.False(t, IsRuleLang("go"))
}

func assertUnique(t *testing.T, list []string) {
	t.Helper()
	seen := make(map[string]bool, len(list))
	for _, p := range list {
		assert.False(t, seen[p], "duplicate %q", p)
		seen[p] = true
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}
