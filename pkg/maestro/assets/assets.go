// Package assets carries the files maestro installs: skills, agents, hook
// scripts, rules, templates and the CLAUDE.md section body. They are built
// into the binary and can be replaced by an on-disk tree with the same
// layout.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

//go:embed data
var embedded embed.FS

// Layout of an assets tree.
const (
	SkillsDir      = "skills"
	AgentsDir      = "agents"
	HooksDir       = "hooks"
	RulesDir       = "rules"
	TemplatesDir   = "templates"
	SectionFile    = "claudemd-section.md"
	SkillFileName  = "SKILL.md"
	CommonRulesDir = "common"
)

// Embedded returns the built-in assets tree.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(fmt.Sprintf("assets: embedded tree: %v", err))
	}
	return sub
}

// Open returns the on-disk tree at dir, or the embedded tree when dir is
// empty.
func Open(dir string) (fs.FS, error) {
	if dir == "" {
		return Embedded(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("assets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets directory %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// SkillPath returns the source path of a skill file.
func SkillPath(name string) string { return path.Join(SkillsDir, name, SkillFileName) }

// AgentPath returns the source path of an agent file.
func AgentPath(name string) string { return path.Join(AgentsDir, name+".md") }

// HookPath returns the source path of a hook script.
func HookPath(name string) string { return path.Join(HooksDir, name) }

// Files returns the regular files matching a doublestar pattern, sorted.
func Files(fsys fs.FS, pattern string) ([]string, error) {
	var out []string
	err := doublestar.GlobWalk(fsys, pattern, func(p string, d fs.DirEntry) error {
		if !d.IsDir() {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(out)
	return out, nil
}

// RuleFiles lists the files directly inside rules/<set>, as names relative
// to that directory. A missing set yields no files.
func RuleFiles(fsys fs.FS, set string) ([]string, error) {
	dir := path.Join(RulesDir, set)
	if !Exists(fsys, dir) {
		return nil, nil
	}
	matches, err := Files(fsys, dir+"/*")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = path.Base(m)
	}
	return names, nil
}

// TemplateFiles lists every file under templates/, relative to it.
func TemplateFiles(fsys fs.FS) ([]string, error) {
	if !Exists(fsys, TemplatesDir) {
		return nil, nil
	}
	matches, err := Files(fsys, TemplatesDir+"/**")
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = m[len(TemplatesDir)+1:]
	}
	return matches, nil
}

// Exists reports whether name is present in fsys.
func Exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}

// Section returns the CLAUDE.md section body.
func Section(fsys fs.FS) (string, error) {
	data, err := fs.ReadFile(fsys, SectionFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
