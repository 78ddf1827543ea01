package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleFiles() Files {
	return Files{
		Skills: []string{".claude/skills/maestro-init/SKILL.md"},
		Agents: []string{".claude/agents/planner.md"},
		Hooks:  []string{".claude/hooks/maestro/auto-format.sh"},
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	m := Create("1.2.0", sampleFiles())
	if m.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", m.Version)
	}
	if !m.InstalledAt.Equal(m.UpdatedAt) {
		t.Errorf("InstalledAt %v != UpdatedAt %v", m.InstalledAt, m.UpdatedAt)
	}
	if m.Permissions != nil {
		t.Error("fresh manifest should carry no permission record")
	}
}

func TestUpdate_PreservesInstalledAt(t *testing.T) {
	t.Parallel()

	installed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := &Manifest{
		Version:     "1.0.0",
		InstalledAt: installed,
		UpdatedAt:   installed,
		Files:       sampleFiles(),
		Permissions: &Permissions{Project: []string{"Read"}},
	}

	files := sampleFiles()
	files.Rules = []string{".claude/rules/common/style.md"}
	updated := Update(existing, "2.0.0", files)

	if !updated.InstalledAt.Equal(installed) {
		t.Errorf("InstalledAt = %v, want %v", updated.InstalledAt, installed)
	}
	if !updated.UpdatedAt.After(installed) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, installed)
	}
	if updated.Version != "2.0.0" || updated.Files.Count() != 4 {
		t.Errorf("got version %q with %d files", updated.Version, updated.Files.Count())
	}
	if updated.Permissions == nil || updated.Permissions.Project[0] != "Read" {
		t.Error("permission record should carry over")
	}
	if existing.Version != "1.0.0" {
		t.Error("Update must not modify the existing manifest")
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	if IsInstalled(root) {
		t.Fatal("IsInstalled() = true before write")
	}

	m := Create("1.0.0", sampleFiles())
	m.Permissions = &Permissions{User: []string{"WebSearch"}}
	if err := Write(root, m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !IsInstalled(root) {
		t.Fatal("IsInstalled() = false after write")
	}
	if _, err := os.Stat(Path(root) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	got, err := Read(root)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got == nil {
		t.Fatal("Read() returned nil manifest")
	}
	if got.Version != m.Version || !got.InstalledAt.Equal(m.InstalledAt) {
		t.Errorf("Read() = %+v, want %+v", got, m)
	}
	if got.Files.Count() != 3 || got.Permissions.User[0] != "WebSearch" {
		t.Errorf("Read() files/permissions mismatch: %+v", got)
	}
}

func TestWrite_JSONShape(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	if err := Write(root, Create("1.0.0", Files{})); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(Path(root))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("manifest is not a JSON object: %v", err)
	}
	for _, key := range []string{"version", "installedAt", "updatedAt", "files"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := raw["permissions"]; ok {
		t.Error("permissions should be omitted when unset")
	}

	var files map[string]json.RawMessage
	if err := json.Unmarshal(raw["files"], &files); err != nil {
		t.Fatalf("files: %v", err)
	}
	if _, ok := files["rules"]; ok {
		t.Error("rules should be omitted when empty")
	}
}

func TestRead_MissingOrMalformed(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		m, err := Read(t.TempDir())
		if m != nil || err != nil {
			t.Errorf("Read() = %v, %v; want nil, nil", m, err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Dir(Path(root)), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(Path(root), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		m, err := Read(root)
		if m != nil || err != nil {
			t.Errorf("Read() = %v, %v; want nil, nil", m, err)
		}
		if !IsInstalled(root) {
			t.Error("IsInstalled() only checks presence")
		}
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	if err := Remove(root); err != nil {
		t.Errorf("Remove() on missing manifest error = %v", err)
	}
	if err := Write(root, Create("1.0.0", Files{})); err != nil {
		t.Fatal(err)
	}
	if err := Remove(root); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if IsInstalled(root) {
		t.Error("manifest still present after Remove()")
	}
}

func TestFiles_All(t *testing.T) {
	t.Parallel()

	f := sampleFiles()
	f.Rules = []string{".claude/rules/common/a.md"}
	all := f.All()
	want := []string{
		".claude/skills/maestro-init/SKILL.md",
		".claude/agents/planner.md",
		".claude/hooks/maestro/auto-format.sh",
		".claude/rules/common/a.md",
	}
	if len(all) != len(want) {
		t.Fatalf("All() = %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, all[i], want[i])
		}
	}
}

func TestManifest_RuleLang(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []string
		want  string
	}{
		{"no rules", nil, ""},
		{"common only", []string{".claude/rules/common/a.md"}, ""},
		{"one language", []string{".claude/rules/common/a.md", ".claude/rules/rust/b.md", ".claude/rules/rust/c.md"}, "rust"},
		{"all languages", []string{".claude/rules/python/a.md", ".claude/rules/rust/b.md", ".claude/rules/typescript/c.md"}, ""},
		{"foreign path ignored", []string{"docs/rules/python/a.md", ".claude/rules/python/a.md"}, "python"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &Manifest{Files: Files{Rules: tt.rules}}
			if got := m.RuleLang(); got != tt.want {
				t.Errorf("RuleLang() = %q, want %q", got, tt.want)
			}
		})
	}

	all := &Manifest{Files: Files{Rules: tests[3].rules}}
	if got := all.Langs(); len(got) != 3 || got[0] != "python" {
		t.Errorf("Langs() = %v", got)
	}
}
