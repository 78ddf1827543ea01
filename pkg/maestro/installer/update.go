package installer

import (
	"fmt"
	"io/fs"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
)

// UpdateOptions configures Update.
type UpdateOptions struct {
	ProjectDir  string
	HomeDir     string
	Version     string
	Force       bool
	DryRun      bool
	LegacyHooks bool
	Assets      fs.FS
}

// Update replaces the managed files of an existing installation with the
// ones for opts.Version. It is a no-op, reported through AlreadyCurrent,
// when the installed version already matches and Force is not set.
//
// Rules are reinstalled when the old install had them, for the language
// it had. Project permissions recorded in the manifest are merged again,
// or the legacy list when nothing was recorded.
func Update(opts UpdateOptions) (*Result, error) {
	if !manifest.IsInstalled(opts.ProjectDir) {
		return nil, ErrNotInstalled
	}
	existing, err := manifest.Read(opts.ProjectDir)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: manifest is unreadable, reinstall with --force", ErrNotInstalled)
	}

	res := &Result{PreviousVersion: existing.Version, DryRun: opts.DryRun}
	if existing.Version == opts.Version && !opts.Force {
		res.AlreadyCurrent = true
		res.action("already at v%s", opts.Version)
		return res.finish(), nil
	}

	clearPrevious(&fsops{root: opts.ProjectDir, dry: opts.DryRun}, res, existing)

	plan := permPlan{project: catalog.LegacyPermissions, previous: existing.Permissions}
	if existing.Permissions != nil && len(existing.Permissions.Project) > 0 {
		plan.project = existing.Permissions.Project
	}

	r, err := newRun(Options{
		ProjectDir:  opts.ProjectDir,
		HomeDir:     opts.HomeDir,
		Version:     opts.Version,
		WithRules:   len(existing.Files.Rules) > 0,
		Lang:        existing.RuleLang(),
		DryRun:      opts.DryRun,
		Force:       true,
		LegacyHooks: opts.LegacyHooks,
		Assets:      opts.Assets,
	}, plan, res)
	if err != nil {
		return nil, err
	}
	if err := r.execute(existing); err != nil {
		return nil, err
	}
	return res.finish(), nil
}

// clearPrevious removes the files an earlier install recorded, and the
// directories they leave empty, so a reinstall never orphans paths the new
// manifest no longer lists.
func clearPrevious(f *fsops, res *Result, existing *manifest.Manifest) {
	removed, skipped := removeManaged(f, existing.Files.All())
	res.action("removed %d managed files from v%s", removed, existing.Version)
	for _, s := range skipped {
		res.softError("refused to remove %s", s)
	}
	if n := pruneDirs(f, existing.Files); n > 0 {
		res.action("removed %d empty directories", n)
	}
}
