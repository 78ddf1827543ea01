package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testMarkers = Markers{Begin: "<!-- MAESTRO:BEGIN", End: "<!-- MAESTRO:END -->"}

func TestMergeSection(t *testing.T) {
	t.Parallel()

	t.Run("creates when empty", func(t *testing.T) {
		t.Parallel()
		got, outcome := MergeSection("", "body\n", "1.0", testMarkers)
		assert.Equal(t, SectionCreated, outcome)
		assert.Equal(t, "<!-- MAESTRO:BEGIN v1.0 -->\nbody\n<!-- MAESTRO:END -->\n", got)
	})

	t.Run("appends after a blank line", func(t *testing.T) {
		t.Parallel()
		got, outcome := MergeSection("# Project\n\nnotes\n\n\n", "body", "1.0", testMarkers)
		assert.Equal(t, SectionAppended, outcome)
		assert.Equal(t, "# Project\n\nnotes\n\n<!-- MAESTRO:BEGIN v1.0 -->\nbody\n<!-- MAESTRO:END -->\n", got)
	})

	t.Run("replaces a versioned section in place", func(t *testing.T) {
		t.Parallel()
		before := "intro\n\n<!-- MAESTRO:BEGIN v1.0 -->\nbody1\n<!-- MAESTRO:END -->\n\noutro\n"
		got, outcome := MergeSection(before, "body2", "2.0", testMarkers)
		assert.Equal(t, SectionReplaced, outcome)
		assert.Equal(t, "intro\n\n<!-- MAESTRO:BEGIN v2.0 -->\nbody2\n<!-- MAESTRO:END -->\n\noutro\n", got)
		assert.Equal(t, 1, strings.Count(got, "MAESTRO:BEGIN"))
		assert.Equal(t, 1, strings.Count(got, "MAESTRO:END"))

		v, ok := testMarkers.Version(got)
		assert.True(t, ok)
		assert.Equal(t, "2.0", v)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		once, _ := MergeSection("user text\n", "body", "1.0", testMarkers)
		twice, outcome := MergeSection(once, "body", "1.0", testMarkers)
		assert.Equal(t, SectionReplaced, outcome)
		assert.Equal(t, once, twice)
	})

	t.Run("begin without end is appended", func(t *testing.T) {
		t.Parallel()
		got, outcome := MergeSection("<!-- MAESTRO:BEGIN v1 -->\ndangling\n", "body", "2", testMarkers)
		assert.Equal(t, SectionAppended, outcome)
		assert.True(t, testMarkers.Contains(got))
	})

	t.Run("orphaned begin keeps the text after it", func(t *testing.T) {
		t.Parallel()
		orphan := "<!-- MAESTRO:BEGIN v1 -->\nmy notes\n"
		once, _ := MergeSection(orphan, "body1", "1", testMarkers)
		twice, outcome := MergeSection(once, "body2", "2", testMarkers)
		assert.Equal(t, SectionReplaced, outcome)
		assert.Equal(t, orphan+"\n<!-- MAESTRO:BEGIN v2 -->\nbody2\n<!-- MAESTRO:END -->\n", twice)

		v, ok := testMarkers.Version(twice)
		assert.True(t, ok)
		assert.Equal(t, "2", v)

		removed, ok := RemoveSection(twice, testMarkers)
		assert.True(t, ok)
		assert.Equal(t, orphan, removed)
	})

	t.Run("stray end before the section is skipped", func(t *testing.T) {
		t.Parallel()
		in := "<!-- MAESTRO:END -->\nmine\n\n<!-- MAESTRO:BEGIN v1 -->\nold\n<!-- MAESTRO:END -->\n"
		got, outcome := MergeSection(in, "new", "2", testMarkers)
		assert.Equal(t, SectionReplaced, outcome)
		assert.Equal(t, "<!-- MAESTRO:END -->\nmine\n\n<!-- MAESTRO:BEGIN v2 -->\nnew\n<!-- MAESTRO:END -->\n", got)
	})
}

func TestRemoveSection(t *testing.T) {
	t.Parallel()

	t.Run("joins both sides with one blank line", func(t *testing.T) {
		t.Parallel()
		in := "intro\n\n<!-- MAESTRO:BEGIN v1 -->\nx\n<!-- MAESTRO:END -->\n\n\noutro\n"
		got, ok := RemoveSection(in, testMarkers)
		assert.True(t, ok)
		assert.Equal(t, "intro\n\noutro\n", got)
	})

	t.Run("only section leaves nothing", func(t *testing.T) {
		t.Parallel()
		got, ok := RemoveSection("<!-- MAESTRO:BEGIN v1 -->\nx\n<!-- MAESTRO:END -->\n", testMarkers)
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("section first keeps trailing content", func(t *testing.T) {
		t.Parallel()
		got, _ := RemoveSection("<!-- MAESTRO:BEGIN v1 -->\nx\n<!-- MAESTRO:END -->\n\nmine\n", testMarkers)
		assert.Equal(t, "mine\n", got)
	})

	t.Run("no markers is a no-op", func(t *testing.T) {
		t.Parallel()
		in := "just text"
		got, ok := RemoveSection(in, testMarkers)
		assert.False(t, ok)
		assert.Equal(t, in, got)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		original := "# Notes\n\nkeep me\n"
		merged, _ := MergeSection(original, "body", "1.0", testMarkers)
		removed, _ := RemoveSection(merged, testMarkers)
		assert.Equal(t, original, removed)

		remerged, _ := MergeSection(removed, "body", "1.0", testMarkers)
		assert.Equal(t, merged, remerged)
	})
}

var testBlock = []string{
	"# Maestro runtime (auto-managed)",
	".maestro/state.json",
	".maestro/consultations/",
}

func TestMergeIgnore(t *testing.T) {
	t.Parallel()

	t.Run("empty file gets just the block", func(t *testing.T) {
		t.Parallel()
		got, changed := MergeIgnore("", testBlock)
		assert.True(t, changed)
		assert.Equal(t, strings.Join(testBlock, "\n")+"\n", got)
	})

	t.Run("appends after existing content", func(t *testing.T) {
		t.Parallel()
		got, changed := MergeIgnore("node_modules/\n", testBlock)
		assert.True(t, changed)
		assert.Equal(t, "node_modules/\n\n"+strings.Join(testBlock, "\n")+"\n", got)
	})

	t.Run("second merge is a no-op", func(t *testing.T) {
		t.Parallel()
		once, _ := MergeIgnore("dist/\n", testBlock)
		twice, changed := MergeIgnore(once, testBlock)
		assert.False(t, changed)
		assert.Equal(t, once, twice)
	})

	t.Run("marker must be a whole line", func(t *testing.T) {
		t.Parallel()
		_, changed := MergeIgnore("foo # Maestro runtime (auto-managed)\n", testBlock)
		assert.True(t, changed)
	})
}

func TestRemoveIgnore(t *testing.T) {
	t.Parallel()

	t.Run("keeps unrelated and blank lines", func(t *testing.T) {
		t.Parallel()
		in := "a\n\n  .maestro/state.json  \nb\n\n# Maestro runtime (auto-managed)\n"
		got, removed := RemoveIgnore(in, testBlock)
		assert.Equal(t, 2, removed)
		assert.Equal(t, "a\n\nb\n\n", got)
	})

	t.Run("round trip is equivalent modulo trailing whitespace", func(t *testing.T) {
		t.Parallel()
		original := "node_modules/\n*.log\n"
		merged, _ := MergeIgnore(original, testBlock)
		removed, _ := RemoveIgnore(merged, testBlock)
		assert.Equal(t, strings.TrimSpace(original), strings.TrimSpace(removed))

		remerged, _ := MergeIgnore(removed, testBlock)
		assert.Equal(t, merged, remerged)
	})

	t.Run("nothing to remove returns input", func(t *testing.T) {
		t.Parallel()
		got, removed := RemoveIgnore("x\n", testBlock)
		assert.Zero(t, removed)
		assert.Equal(t, "x\n", got)
	})
}
