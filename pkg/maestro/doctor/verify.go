package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/installer"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/merge"
)

// manifestSchema describes .maestro/manifest.json.
const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "installedAt", "updatedAt", "files"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "installedAt": {"type": "string", "format": "date-time"},
    "updatedAt": {"type": "string", "format": "date-time"},
    "files": {
      "type": "object",
      "required": ["skills", "agents", "hooks"],
      "properties": {
        "skills": {"$ref": "#/definitions/paths"},
        "agents": {"$ref": "#/definitions/paths"},
        "hooks": {"$ref": "#/definitions/paths"},
        "rules": {"$ref": "#/definitions/paths"}
      }
    },
    "permissions": {
      "type": "object",
      "properties": {
        "project": {"$ref": "#/definitions/patterns"},
        "user": {"$ref": "#/definitions/patterns"}
      },
      "additionalProperties": false
    }
  },
  "definitions": {
    "paths": {"type": ["array", "null"], "items": {"type": "string", "minLength": 1}},
    "patterns": {"type": "array", "items": {"type": "string"}}
  }
}`

// maxListed caps how many paths a single check detail names.
const maxListed = 5

func verify(dir string, m *manifest.Manifest) Section {
	s := Section{Title: "Verify"}
	checkSchema(&s, dir)
	checkFiles(&s, dir, m)
	checkExecutable(&s, dir, m)
	checkDrift(&s, dir, m)
	checkIgnore(&s, dir)
	checkLegacyHooks(&s, dir)
	return s
}

// ValidateManifest checks raw manifest JSON against the schema and
// returns the violations.
func ValidateManifest(data []byte) ([]string, error) {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	var out []string
	for _, e := range res.Errors() {
		field := e.Field()
		if field == "" {
			field = "root"
		}
		out = append(out, field+": "+e.Description())
	}
	return out, nil
}

func checkSchema(s *Section, dir string) {
	data, err := os.ReadFile(manifest.Path(dir))
	if err != nil {
		s.add("schema", StatusIssue, "%v", err)
		return
	}
	problems, err := ValidateManifest(data)
	switch {
	case err != nil:
		s.add("schema", StatusIssue, "%v", err)
	case len(problems) > 0:
		s.add("schema", StatusIssue, "%s", summarize(problems))
	default:
		s.add("schema", StatusOK, "manifest matches schema")
	}
}

func checkFiles(s *Section, dir string, m *manifest.Manifest) {
	var missing []string
	for _, rel := range m.Files.All() {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			missing = append(missing, rel)
		}
	}
	if len(missing) > 0 {
		s.add("files", StatusIssue, "%d missing: %s", len(missing), summarize(missing))
		return
	}
	s.add("files", StatusOK, "all %d managed files present", m.Files.Count())
}

func checkExecutable(s *Section, dir string, m *manifest.Manifest) {
	var bad []string
	for _, rel := range m.Files.Hooks {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if !executable(p) {
			bad = append(bad, rel)
		}
	}
	if len(bad) > 0 {
		s.add("hook scripts", StatusIssue, "not executable: %s", summarize(bad))
		return
	}
	s.add("hook scripts", StatusOK, "executable")
}

// ownedDirs are the directories whose whole content maestro manages.
func ownedDirs(m *manifest.Manifest) []string {
	dirs := []string{catalog.DirHooks}
	for _, sk := range catalog.AllSkills() {
		dirs = append(dirs, path.Join(catalog.DirSkills, sk))
	}
	if len(m.Files.Rules) > 0 {
		dirs = append(dirs, path.Join(catalog.DirRules, "common"))
		for _, l := range m.Langs() {
			dirs = append(dirs, path.Join(catalog.DirRules, l))
		}
	}
	return dirs
}

// Drift lists files under maestro-owned directories that the manifest
// does not record, as sorted project-relative paths.
func Drift(dir string, m *manifest.Manifest) ([]string, error) {
	known := make(map[string]struct{}, m.Files.Count())
	for _, rel := range m.Files.All() {
		known[path.Clean(rel)] = struct{}{}
	}

	var (
		mu    sync.Mutex
		extra []string
	)
	conf := fastwalk.Config{Follow: false}
	for _, owned := range ownedDirs(m) {
		root := filepath.Join(dir, filepath.FromSlash(owned))
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			rel, rerr := filepath.Rel(dir, p)
			if rerr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if _, ok := known[rel]; ok {
				return nil
			}
			mu.Lock()
			extra = append(extra, rel)
			mu.Unlock()
			return nil
		})
		if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
			return nil, fmt.Errorf("scan %s: %w", owned, err)
		}
	}
	sort.Strings(extra)
	return extra, nil
}

func checkDrift(s *Section, dir string, m *manifest.Manifest) {
	extra, err := Drift(dir, m)
	switch {
	case err != nil:
		s.add("drift", StatusWarn, "%v", err)
	case len(extra) > 0:
		s.add("drift", StatusWarn, "%d untracked file(s) in maestro directories: %s", len(extra), summarize(extra))
	default:
		s.add("drift", StatusOK, "no untracked files in maestro directories")
	}
}

// runtimeIgnored are runtime paths that must stay out of version control.
var runtimeIgnored = []struct {
	rel   string
	isDir bool
}{
	{catalog.RuntimeState, false},
	{catalog.DirConsultations, true},
	{catalog.DirLearnings, true},
}

// Unignored returns the runtime paths the gitignore rules of the
// repository around dir do not cover. Outside a repository the project
// directory itself is used as the root.
func Unignored(dir string) ([]string, error) {
	root, err := repoRoot(dir)
	if err != nil {
		root = dir
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("read gitignore patterns: %w", err)
	}
	matcher := gitignore.NewMatcher(patterns)

	var out []string
	for _, r := range runtimeIgnored {
		abs := filepath.Join(dir, filepath.FromSlash(r.rel))
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if !matcher.Match(parts, r.isDir) {
			out = append(out, r.rel)
		}
	}
	return out, nil
}

func checkIgnore(s *Section, dir string) {
	missing, err := Unignored(dir)
	switch {
	case err != nil:
		s.add("gitignore", StatusWarn, "%v", err)
	case len(missing) > 0:
		s.add("gitignore", StatusWarn, "not ignored: %s", strings.Join(missing, ", "))
	default:
		s.add("gitignore", StatusOK, "runtime state is ignored")
	}
}

// LegacyHooks counts hook records in the project settings that an older
// version wrote without a tag.
func LegacyHooks(dir string) int {
	s, state := merge.ReadSettings(filepath.Join(dir, filepath.FromSlash(catalog.ProjectSettings)))
	if state != merge.FileLoaded {
		return 0
	}
	return installer.UntaggedHooks(s.Hooks)
}

func checkLegacyHooks(s *Section, dir string) {
	if n := LegacyHooks(dir); n > 0 {
		s.add("legacy hooks", StatusWarn, "%d untagged hook record(s); run maestro update --force to migrate", n)
		return
	}
	s.add("legacy hooks", StatusOK, "none")
}

func summarize(items []string) string {
	if len(items) <= maxListed {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:maxListed], ", "), len(items)-maxListed)
}
