package installer

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/merge"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/trash"
)

// UninstallOptions configures Uninstall.
type UninstallOptions struct {
	ProjectDir string
	HomeDir    string
	DryRun     bool
	// User also strips maestro permissions from the user-scope settings.
	User bool
	// Purge disposes of the whole .maestro directory, user data included.
	Purge       bool
	LegacyHooks bool
	// Dispose handles the purge. Nil uses trash.Move.
	Dispose trash.Func
}

// Uninstall removes maestro from opts.ProjectDir: managed files, injected
// hooks and permissions, the CLAUDE.md section, the .gitignore block and
// the manifest. Runtime data under .maestro stays unless Purge is set.
func Uninstall(ctx context.Context, opts UninstallOptions) (*Result, error) {
	if !manifest.IsInstalled(opts.ProjectDir) {
		return nil, ErrNotInstalled
	}
	m, err := manifest.Read(opts.ProjectDir)
	if err != nil {
		return nil, err
	}

	f := &fsops{root: opts.ProjectDir, dry: opts.DryRun}
	res := &Result{DryRun: opts.DryRun}

	var files manifest.Files
	var record *manifest.Permissions
	if m == nil {
		res.softError("manifest is unreadable; managed files were left in place")
	} else {
		res.PreviousVersion = m.Version
		files, record = m.Files, m.Permissions
	}

	removed, skipped := removeManaged(f, files.All())
	res.action("removed %d managed files", removed)
	for _, s := range skipped {
		res.softError("refused to remove %s", s)
	}
	if n := pruneDirs(f, files); n > 0 {
		res.action("removed %d empty directories", n)
	}

	owner := Owner(opts.LegacyHooks)
	if err := stripSettings(f, res, f.path(catalog.ProjectSettings), catalog.ProjectSettings, func(s *merge.Settings) int {
		if s.Hooks == nil {
			return 0
		}
		if n := UntaggedHooks(s.Hooks); n > 0 && !opts.LegacyHooks {
			res.action("left %d untagged hook records from an older install; rerun with --legacy-hooks to remove them", n)
		}
		return merge.RemoveHooks(s.Hooks, owner)
	}, "hook records"); err != nil {
		return nil, err
	}

	projectStrip, userStrip := catalog.AllKnownPermissions(), catalog.AllKnownPermissions()
	if record != nil {
		projectStrip, userStrip = record.Project, record.User
	}
	if err := stripSettings(f, res, f.path(catalog.ProjectLocalSettings), catalog.ProjectLocalSettings, func(s *merge.Settings) int {
		return merge.RemovePermissions(s, projectStrip)
	}, "permissions"); err != nil {
		return nil, err
	}
	if opts.User && opts.HomeDir != "" {
		if err := stripSettings(f, res, userSettingsPath(opts.HomeDir), "~/"+catalog.UserLocalSettings, func(s *merge.Settings) int {
			return merge.RemovePermissions(s, userStrip)
		}, "permissions"); err != nil {
			return nil, err
		}
	}

	if err := stripSection(f, res); err != nil {
		return nil, err
	}
	if err := stripIgnore(f, res); err != nil {
		return nil, err
	}

	if err := f.remove(manifest.Path(opts.ProjectDir)); err != nil {
		return nil, err
	}
	res.action("removed manifest")

	if opts.Purge {
		purge(ctx, f, res, opts.Dispose)
	}

	for _, name := range []string{catalog.ProjectSettings, catalog.ProjectLocalSettings} {
		p := f.path(name)
		s, state := merge.ReadSettings(p)
		if state == merge.FileLoaded && merge.IsEffectivelyEmpty(s) {
			if err := f.remove(p); err != nil {
				return nil, err
			}
			res.action("removed empty %s", name)
		}
	}
	if f.removeIfEmpty(f.path(catalog.DirClaude)) {
		res.action("removed empty %s", catalog.DirClaude)
	}
	return res.finish(), nil
}

// removeManaged deletes the listed project-relative files. Paths that are
// not local to the project, or that hold user data, are refused and
// returned.
func removeManaged(f *fsops, files []string) (int, []string) {
	removed := 0
	var skipped []string
	for _, rel := range files {
		if !filepath.IsLocal(filepath.FromSlash(rel)) || catalog.IsUserData(rel) {
			skipped = append(skipped, rel)
			continue
		}
		p := f.path(rel)
		if !f.exists(p) {
			continue
		}
		if err := f.remove(p); err != nil {
			logger.Warn("could not remove managed file", "path", p, "err", err)
			skipped = append(skipped, rel)
			continue
		}
		removed++
	}
	return removed, skipped
}

// pruneDirs removes directories left empty by removeManaged, deepest
// first, ending with the fixed maestro directories under .claude.
func pruneDirs(f *fsops, files manifest.Files) int {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(d string) {
		if _, ok := seen[d]; ok || d == "." || d == catalog.DirClaude {
			return
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	for _, rel := range files.All() {
		if filepath.IsLocal(filepath.FromSlash(rel)) {
			add(path.Dir(rel))
		}
	}
	for _, d := range []string{catalog.DirHooks, catalog.DirRules, catalog.DirSkills, catalog.DirAgents, catalog.DirHooksRoot} {
		add(d)
	}
	sort.SliceStable(dirs, func(i, j int) bool { return depth(dirs[i]) > depth(dirs[j]) })

	n := 0
	for _, d := range dirs {
		if f.removeIfEmpty(f.path(d)) {
			n++
		}
	}
	return n
}

func depth(p string) int { return strings.Count(p, "/") }

// stripSettings applies strip to the settings file at p and writes it back
// when something was removed. Missing and malformed files are skipped.
func stripSettings(f *fsops, res *Result, p, label string, strip func(*merge.Settings) int, what string) error {
	s, state := merge.ReadSettings(p)
	switch state {
	case merge.FileMissing:
		return nil
	case merge.FileInvalid:
		res.softError("%s is malformed; left untouched", label)
		return nil
	}
	n := strip(s)
	if n == 0 {
		return nil
	}
	if err := f.writeSettings(p, s); err != nil {
		return err
	}
	res.action("removed %d maestro %s from %s", n, what, label)
	return nil
}

func stripSection(f *fsops, res *Result) error {
	p := f.path(catalog.InstructionsFile)
	text, state := merge.ReadText(p)
	if state != merge.FileLoaded {
		return nil
	}
	out, ok := merge.RemoveSection(text, sectionMarkers)
	if !ok {
		return nil
	}
	if out == "" {
		if err := f.remove(p); err != nil {
			return err
		}
		res.action("removed %s, which held only the maestro section", catalog.InstructionsFile)
		return nil
	}
	if err := f.writeFile(p, []byte(out), 0o644); err != nil {
		return err
	}
	res.action("removed the maestro section from %s", catalog.InstructionsFile)
	return nil
}

func stripIgnore(f *fsops, res *Result) error {
	p := f.path(catalog.IgnoreFile)
	text, state := merge.ReadText(p)
	if state != merge.FileLoaded {
		return nil
	}
	out, n := merge.RemoveIgnore(text, catalog.IgnoreBlock)
	if n == 0 {
		return nil
	}
	if err := f.writeFile(p, []byte(out), 0o644); err != nil {
		return err
	}
	res.action("removed %d maestro entries from %s", n, catalog.IgnoreFile)
	return nil
}

func purge(ctx context.Context, f *fsops, res *Result, dispose trash.Func) {
	dir := f.path(catalog.DirRuntime)
	if !f.exists(dir) {
		return
	}
	if f.dry {
		res.action("would purge %s", catalog.DirRuntime)
		return
	}
	if dispose == nil {
		dispose = trash.Move
	}
	method, err := dispose(ctx, dir)
	if err != nil {
		res.softError("could not purge %s: %v", catalog.DirRuntime, err)
		return
	}
	if method == trash.Trashed {
		res.action("moved %s to the trash", catalog.DirRuntime)
	} else {
		res.action("deleted %s", catalog.DirRuntime)
	}
}
