// Package installer provisions maestro into a project and takes it out
// again. Install, Update and Uninstall run a fixed sequence of steps;
// problems with individual assets are collected as soft errors while
// write failures abort the run.
package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/assets"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/merge"
)

var logger = logging.Get("installer")

var (
	// ErrAlreadyInstalled is returned by Install when a manifest exists and
	// Force is not set.
	ErrAlreadyInstalled = errors.New("maestro is already installed in this project")
	// ErrNotInstalled is returned by Update and Uninstall when the project
	// has no manifest.
	ErrNotInstalled = errors.New("maestro is not installed in this project")
)

// Options configures Install.
type Options struct {
	// ProjectDir is the project root.
	ProjectDir string
	// HomeDir is the root for user-scope settings.
	HomeDir string
	// Version is stamped into the manifest and the CLAUDE.md section.
	Version string
	// WithRules installs coding rules: common plus Lang, or every language
	// when Lang is empty.
	WithRules bool
	Lang      string
	DryRun    bool
	// Force reinstalls over an existing installation.
	Force bool
	// Selection is the resolved permission choice. Nil merges the legacy
	// fixed list into project scope.
	Selection *catalog.Selection
	// LegacyHooks also claims untagged hook records written by older
	// versions. Install turns it on by itself when such records exist.
	LegacyHooks bool
	// Assets is the source tree. Nil uses the embedded assets.
	Assets fs.FS
	// Runtime seeds a newly written .maestro/config.json.
	Runtime RuntimeFlags
}

// Result reports what a run did.
type Result struct {
	Success bool
	Actions []string
	Errors  []string
	// Manifest is the manifest written, nil for dry runs and uninstall.
	Manifest *manifest.Manifest
	// AlreadyCurrent is set when Update found nothing to do.
	AlreadyCurrent bool
	// PreviousVersion is the version found before Update or Uninstall.
	PreviousVersion string
	DryRun          bool
}

func (r *Result) action(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Info(msg)
	r.Actions = append(r.Actions, msg)
}

func (r *Result) softError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg)
	r.Errors = append(r.Errors, msg)
}

func (r *Result) finish() *Result {
	r.Success = len(r.Errors) == 0
	return r
}

// permPlan says which allow-list patterns go where.
type permPlan struct {
	project []string
	user    []string
	// previous is the record carried over from an earlier install.
	previous *manifest.Permissions
}

// run is the shared install sequence behind Install and Update.
type run struct {
	fs     *fsops
	src    fs.FS
	opts   Options
	perms  permPlan
	res    *Result
	files  manifest.Files
	record manifest.Permissions
}

// Install provisions maestro into opts.ProjectDir.
func Install(opts Options) (*Result, error) {
	existing, err := manifest.Read(opts.ProjectDir)
	if err != nil {
		return nil, err
	}
	if manifest.IsInstalled(opts.ProjectDir) && !opts.Force {
		return nil, ErrAlreadyInstalled
	}

	plan := permPlan{project: catalog.LegacyPermissions}
	if opts.Selection != nil {
		plan = permPlan{project: opts.Selection.Project, user: opts.Selection.User}
	}
	if existing != nil {
		plan.previous = existing.Permissions
	}

	res := &Result{DryRun: opts.DryRun}
	if existing != nil {
		res.PreviousVersion = existing.Version
	}
	r, err := newRun(opts, plan, res)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		clearPrevious(r.fs, res, existing)
	}
	if err := r.execute(existing); err != nil {
		return nil, err
	}
	return res.finish(), nil
}

func newRun(opts Options, plan permPlan, res *Result) (*run, error) {
	if opts.ProjectDir == "" {
		return nil, errors.New("project directory is required")
	}
	if opts.Lang != "" && !catalog.IsRuleLang(opts.Lang) {
		return nil, fmt.Errorf("unknown rule language %q", opts.Lang)
	}
	src := opts.Assets
	if src == nil {
		src = assets.Embedded()
	}
	return &run{
		fs:    &fsops{root: opts.ProjectDir, dry: opts.DryRun},
		src:   src,
		opts:  opts,
		perms: plan,
		res:   res,
	}, nil
}

// execute runs the install steps in order. existing, when set, is the
// manifest being replaced; its install time is kept.
func (r *run) execute(existing *manifest.Manifest) error {
	steps := []func() error{
		r.createDirs,
		r.copySkills,
		r.copyAgents,
		r.copyHooks,
		r.copyRules,
		r.copyTemplates,
		r.mergeHookConfig,
		r.mergePermissions,
		r.injectSection,
		r.writeRuntimeConfig,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	if err := r.writeManifest(existing); err != nil {
		return err
	}
	return r.mergeIgnore()
}

func (r *run) createDirs() error {
	for _, d := range catalog.InstallDirs {
		if err := r.fs.mkdirAll(r.fs.path(d)); err != nil {
			return err
		}
	}
	r.res.action("created %d directories", len(catalog.InstallDirs))
	return nil
}

// copyAsset copies one source file to a project-relative destination. A
// missing source is a soft error and reports false.
func (r *run) copyAsset(src, dst string, perm fs.FileMode) (bool, error) {
	data, err := fs.ReadFile(r.src, src)
	if err != nil {
		r.res.softError("missing source asset %s", src)
		return false, nil
	}
	p := r.fs.path(dst)
	if err := r.fs.writeFile(p, data, perm); err != nil {
		return false, err
	}
	if perm&0o111 != 0 {
		if err := r.fs.chmod(p, perm); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *run) copySkills() error {
	for _, s := range catalog.AllSkills() {
		dst := path.Join(catalog.DirSkills, s, assets.SkillFileName)
		ok, err := r.copyAsset(assets.SkillPath(s), dst, 0o644)
		if err != nil {
			return err
		}
		if ok {
			r.files.Skills = append(r.files.Skills, dst)
		}
	}
	r.res.action("installed %d skills", len(r.files.Skills))
	return nil
}

func (r *run) copyAgents() error {
	for _, a := range catalog.Agents {
		dst := path.Join(catalog.DirAgents, a+".md")
		ok, err := r.copyAsset(assets.AgentPath(a), dst, 0o644)
		if err != nil {
			return err
		}
		if ok {
			r.files.Agents = append(r.files.Agents, dst)
		}
	}
	r.res.action("installed %d agents", len(r.files.Agents))
	return nil
}

func (r *run) copyHooks() error {
	for _, h := range catalog.HookScripts {
		dst := path.Join(catalog.DirHooks, h)
		ok, err := r.copyAsset(assets.HookPath(h), dst, 0o755)
		if err != nil {
			return err
		}
		if ok {
			r.files.Hooks = append(r.files.Hooks, dst)
		}
	}
	r.res.action("installed %d hook scripts", len(r.files.Hooks))
	return nil
}

func (r *run) copyRules() error {
	if !r.opts.WithRules {
		return nil
	}
	sets := []string{assets.CommonRulesDir}
	if r.opts.Lang != "" {
		sets = append(sets, r.opts.Lang)
	} else {
		sets = append(sets, catalog.RuleLangs...)
	}

	for _, set := range sets {
		names, err := assets.RuleFiles(r.src, set)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			r.res.softError("no %s rules found in assets", set)
			continue
		}
		n := 0
		for _, name := range names {
			dst := path.Join(catalog.DirRules, set, name)
			ok, err := r.copyAsset(path.Join(assets.RulesDir, set, name), dst, 0o644)
			if err != nil {
				return err
			}
			if ok {
				r.files.Rules = append(r.files.Rules, dst)
				n++
			}
		}
		r.res.action("installed %d %s rules", n, set)
	}
	return nil
}

// copyTemplates installs the templates. They are user-editable and not
// recorded in the manifest.
func (r *run) copyTemplates() error {
	names, err := assets.TemplateFiles(r.src)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	for _, name := range names {
		if _, err := r.copyAsset(path.Join(assets.TemplatesDir, name), path.Join(catalog.DirTemplates, name), 0o644); err != nil {
			return err
		}
	}
	r.res.action("installed %d templates", len(names))
	return nil
}

// loadSettings reads a settings file for a merge, backing up and noting a
// malformed one.
func (r *run) loadSettings(p, label string) (*merge.Settings, error) {
	s, state := merge.ReadSettings(p)
	if state == merge.FileInvalid {
		bak, err := r.fs.backup(p)
		if err != nil {
			return nil, err
		}
		r.res.action("%s was malformed; saved a copy to %s and started from an empty document", label, bak)
		return s, nil
	}
	if odd := s.Unusable(); len(odd) > 0 {
		bak, err := r.fs.backup(p)
		if err != nil {
			return nil, err
		}
		r.res.action("%s has unexpected values at %s; saved a copy to %s", label, strings.Join(odd, ", "), bak)
	}
	return s, nil
}

func (r *run) mergeHookConfig() error {
	p := r.fs.path(catalog.ProjectSettings)
	s, err := r.loadSettings(p, catalog.ProjectSettings)
	if err != nil {
		return err
	}
	legacy := r.opts.LegacyHooks
	if n := UntaggedHooks(s.Hooks); n > 0 && !legacy {
		legacy = true
		r.res.action("found %d untagged maestro hook records from an older install; replacing them", n)
	}
	actions := merge.MergeHooks(s.EnsureHooks(), Hooks(), Owner(legacy))
	if err := r.fs.writeSettings(p, s); err != nil {
		return err
	}
	for _, a := range actions {
		r.res.action("%s in %s", a, catalog.ProjectSettings)
	}
	return nil
}

// mergeAllow merges patterns into the settings file at p and returns the
// patterns that were new.
func (r *run) mergeAllow(p, label string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	s, err := r.loadSettings(p, label)
	if err != nil {
		return nil, err
	}
	added := merge.MergePermissions(s, patterns)
	if len(added) == 0 {
		r.res.action("all %d permissions already present in %s", len(patterns), label)
		return nil, nil
	}
	if err := r.fs.writeSettings(p, s); err != nil {
		return nil, err
	}
	r.res.action("added %d permissions to %s", len(added), label)
	return added, nil
}

func (r *run) mergePermissions() error {
	added, err := r.mergeAllow(r.fs.path(catalog.ProjectLocalSettings), catalog.ProjectLocalSettings, r.perms.project)
	if err != nil {
		return err
	}
	var prevProject, prevUser []string
	if r.perms.previous != nil {
		prevProject, prevUser = r.perms.previous.Project, r.perms.previous.User
	}
	r.record.Project = union(prevProject, added)

	var addedUser []string
	if len(r.perms.user) > 0 {
		if r.opts.HomeDir == "" {
			r.res.softError("no home directory configured; skipped user-scope permissions")
		} else {
			userPath := userSettingsPath(r.opts.HomeDir)
			if addedUser, err = r.mergeAllow(userPath, "~/"+catalog.UserLocalSettings, r.perms.user); err != nil {
				return err
			}
		}
	}
	r.record.User = union(prevUser, addedUser)
	return nil
}

func (r *run) injectSection() error {
	body, err := assets.Section(r.src)
	if err != nil {
		r.res.softError("missing source asset %s", assets.SectionFile)
		return nil
	}
	p := r.fs.path(catalog.InstructionsFile)
	text, _ := merge.ReadText(p)
	out, outcome := merge.MergeSection(text, body, r.opts.Version, sectionMarkers)
	if err := r.fs.writeFile(p, []byte(out), 0o644); err != nil {
		return err
	}
	switch outcome {
	case merge.SectionCreated:
		r.res.action("created %s with the maestro section", catalog.InstructionsFile)
	case merge.SectionReplaced:
		r.res.action("updated the maestro section in %s", catalog.InstructionsFile)
	default:
		r.res.action("appended the maestro section to %s", catalog.InstructionsFile)
	}
	return nil
}

func (r *run) writeRuntimeConfig() error {
	p := r.fs.path(catalog.RuntimeConfig)
	if r.fs.exists(p) {
		r.res.action("kept existing %s", catalog.RuntimeConfig)
		return nil
	}
	data, err := merge.EncodeIndent(DefaultRuntimeConfig(r.opts.Runtime))
	if err != nil {
		return fmt.Errorf("encode runtime config: %w", err)
	}
	if err := r.fs.writeFile(p, data, 0o644); err != nil {
		return err
	}
	r.res.action("generated default %s", catalog.RuntimeConfig)
	return nil
}

func (r *run) writeManifest(existing *manifest.Manifest) error {
	var m *manifest.Manifest
	if existing != nil {
		m = manifest.Update(existing, r.opts.Version, r.files)
	} else {
		m = manifest.Create(r.opts.Version, r.files)
	}
	if len(r.record.Project) > 0 || len(r.record.User) > 0 {
		rec := r.record
		m.Permissions = &rec
	} else {
		m.Permissions = nil
	}

	if !r.opts.DryRun {
		if err := manifest.Write(r.opts.ProjectDir, m); err != nil {
			return err
		}
		r.res.Manifest = m
	}
	r.res.action("wrote manifest (v%s, %d files)", r.opts.Version, r.files.Count())
	return nil
}

func (r *run) mergeIgnore() error {
	p := r.fs.path(catalog.IgnoreFile)
	text, _ := merge.ReadText(p)
	out, changed := merge.MergeIgnore(text, catalog.IgnoreBlock)
	if !changed {
		r.res.action("%s already lists maestro runtime files", catalog.IgnoreFile)
		return nil
	}
	if err := r.fs.writeFile(p, []byte(out), 0o644); err != nil {
		return err
	}
	r.res.action("added maestro runtime entries to %s", catalog.IgnoreFile)
	return nil
}

var sectionMarkers = merge.Markers{Begin: catalog.SectionBegin, End: catalog.SectionEnd}

func userSettingsPath(home string) string {
	return (&fsops{root: home}).path(catalog.UserLocalSettings)
}

// union appends the entries of b missing from a, keeping first-seen order.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
