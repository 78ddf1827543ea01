package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
)

func TestEmbedded_HasEveryCatalogEntry(t *testing.T) {
	t.Parallel()
	fsys := Embedded()

	for _, s := range catalog.AllSkills() {
		assert.True(t, Exists(fsys, SkillPath(s)), s)
	}
	for _, a := range catalog.Agents {
		assert.True(t, Exists(fsys, AgentPath(a)), a)
	}
	for _, h := range catalog.HookScripts {
		assert.True(t, Exists(fsys, HookPath(h)), h)
	}

	body, err := Section(fsys)
	require.NoError(t, err)
	assert.Contains(t, body, "maestro")
}

func TestRuleFiles(t *testing.T) {
	t.Parallel()
	fsys := Embedded()

	common, err := RuleFiles(fsys, CommonRulesDir)
	require.NoError(t, err)
	assert.NotEmpty(t, common)
	assert.IsIncreasing(t, common)

	for _, lang := range catalog.RuleLangs {
		files, err := RuleFiles(fsys, lang)
		require.NoError(t, err)
		assert.NotEmpty(t, files, lang)
	}

	none, err := RuleFiles(fsys, "cobol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTemplateFiles(t *testing.T) {
	t.Parallel()

	files, err := TemplateFiles(Embedded())
	require.NoError(t, err)
	assert.Contains(t, files, "plan.md")
	for _, f := range files {
		assert.NotContains(t, f, TemplatesDir+"/")
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	fsys, err := Open("")
	require.NoError(t, err)
	assert.True(t, Exists(fsys, SectionFile))

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "nested", "x.md"), []byte("x"), 0o644))

	disk, err := Open(dir)
	require.NoError(t, err)
	files, err := TemplateFiles(disk)
	require.NoError(t, err)
	assert.Equal(t, []string{"nested/x.md"}, files)
	assert.False(t, Exists(disk, SectionFile))

	_, err = Open(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Open(file)
	assert.Error(t, err)
}
