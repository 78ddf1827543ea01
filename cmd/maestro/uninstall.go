package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/cmd/maestro/tui"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/installer"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/journal"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/trash"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove maestro from a project",
	Long: `Uninstall deletes the files listed in the manifest, strips maestro's hooks
and permissions from the Claude Code settings, removes the CLAUDE.md
section and the .gitignore entries, and deletes the manifest. Anything
you added to those files stays.

Runtime data under .maestro (state, learnings, consultations, config) is
kept unless --purge is given; purged data goes to the system trash when
one is available.`,
	Args: cobra.NoArgs,
	RunE: runUninstall,
}

var (
	uninstallForce       bool
	uninstallYes         bool
	uninstallUser        bool
	uninstallPurge       bool
	uninstallPermanent   bool
	uninstallDryRun      bool
	uninstallLegacyHooks bool
)

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallForce, "force", "f", false, "do not ask for confirmation")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "answer yes to the confirmation")
	uninstallCmd.Flags().BoolVar(&uninstallUser, "user", false, "also remove maestro permissions from ~/.claude/settings.local.json")
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "also remove .maestro runtime data")
	uninstallCmd.Flags().BoolVar(&uninstallPermanent, "permanent", false, "with --purge, delete instead of moving to the trash")
	uninstallCmd.Flags().BoolVarP(&uninstallDryRun, "dry-run", "d", false, "show what would change without writing")
	uninstallCmd.Flags().BoolVar(&uninstallLegacyHooks, "legacy-hooks", false, "also remove untagged hook entries from older versions")

	rootCmd.AddCommand(uninstallCmd)
}

// confirmer is the subset of tui.Prompter uninstall needs.
type confirmer interface {
	Confirm(question string, def bool) (bool, error)
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	if !manifest.IsInstalled(dir) {
		return installer.ErrNotInstalled
	}
	installed := "unknown"
	if m, err := manifest.Read(dir); err == nil && m != nil {
		installed = m.Version
	}

	user := uninstallUser
	if !uninstallDryRun {
		proceed, askedUser, err := confirmUninstall(tui.Prompter{}, dir, installed, interactive(), cmd.Flags().Changed("user"))
		if err != nil {
			return err
		}
		if !proceed {
			printInfo("Uninstall cancelled.")
			return nil
		}
		user = user || askedUser
	}

	var dispose trash.Func
	if uninstallPermanent {
		dispose = trash.Delete
	}
	res, err := installer.Uninstall(commandContext(cmd), installer.UninstallOptions{
		ProjectDir:  dir,
		HomeDir:     cfg.HomeDir,
		DryRun:      uninstallDryRun,
		User:        user,
		Purge:       uninstallPurge,
		LegacyHooks: uninstallLegacyHooks || cfg.Hooks.LegacyMatch,
		Dispose:     dispose,
	})
	if err != nil {
		return err
	}
	if !uninstallDryRun {
		recordJournal(journalEntry(journal.OpUninstall, dir, res.PreviousVersion, res))
	}

	r := resultReport(output.KindUninstall, "Maestro Uninstall", dir, res)
	if !uninstallPurge && res.Success && !res.DryRun {
		r.Hints = append(r.Hints, "Runtime data in .maestro was kept. Use --purge to remove it too.")
	}
	return render(r)
}

// confirmUninstall asks whether to go ahead and, unless --user decided
// it, whether to clean the user settings too. --force and --yes skip the
// questions; without a terminal one of them is required.
func confirmUninstall(ask confirmer, dir, installed string, tty, userDecided bool) (proceed, user bool, err error) {
	if uninstallForce || uninstallYes {
		return true, false, nil
	}
	if !tty {
		return false, false, errors.New("refusing to uninstall without confirmation; pass --yes or --force")
	}

	question := fmt.Sprintf("Remove maestro v%s from %s?", installed, dir)
	if uninstallPurge {
		question = fmt.Sprintf("Remove maestro v%s and all runtime data from %s?", installed, dir)
	}
	ok, err := ask.Confirm(question, false)
	if err != nil || !ok {
		return false, false, err
	}
	if userDecided {
		return true, false, nil
	}
	user, err = ask.Confirm("Also remove maestro permissions from your user settings?", false)
	if err != nil {
		return false, false, err
	}
	return true, user, nil
}
