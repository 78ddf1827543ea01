package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/installer"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/journal"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an installation to this version",
	Long: `Update replaces the managed files of an existing installation with the ones
shipped in this binary and merges hooks, permissions and the CLAUDE.md
section again. Rules are reinstalled for the language chosen at install
time. Your learnings, runtime config and other data under .maestro stay.

Nothing happens when the installed version already matches, unless --force
is given.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var (
	updateForce       bool
	updateDryRun      bool
	updateLegacyHooks bool
)

func init() {
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "reinstall even when up to date or downgrading")
	updateCmd.Flags().BoolVarP(&updateDryRun, "dry-run", "d", false, "show what would change without writing")
	updateCmd.Flags().BoolVar(&updateLegacyHooks, "legacy-hooks", false, "also replace untagged hook entries from older versions")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(_ *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	if !manifest.IsInstalled(dir) {
		return fmt.Errorf("%w; run 'maestro install' first", installer.ErrNotInstalled)
	}
	if err := checkDowngrade(dir, version, updateForce); err != nil {
		return err
	}
	src, err := assetSource()
	if err != nil {
		return err
	}

	res, err := installer.Update(installer.UpdateOptions{
		ProjectDir:  dir,
		HomeDir:     cfg.HomeDir,
		Version:     version,
		Force:       updateForce,
		DryRun:      updateDryRun,
		LegacyHooks: updateLegacyHooks || cfg.Hooks.LegacyMatch,
		Assets:      src,
	})
	if err != nil {
		return err
	}
	if !updateDryRun && !res.AlreadyCurrent {
		recordJournal(journalEntry(journal.OpUpdate, dir, version, res))
	}
	return render(resultReport(output.KindUpdate, "Maestro Update", dir, res))
}

// checkDowngrade refuses to replace a newer installation with an older
// binary unless forced. Unreadable manifests and non-semver versions are
// left for Update to judge.
func checkDowngrade(dir, binary string, force bool) error {
	if force {
		return nil
	}
	m, err := manifest.Read(dir)
	if err != nil || m == nil {
		return nil
	}
	if cmp, ok := compareVersions(m.Version, binary); ok && cmp > 0 {
		return fmt.Errorf("installed version %s is newer than this binary (%s); use --force to downgrade", m.Version, binary)
	}
	return nil
}
