package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/config"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/journal"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of install, update and uninstall runs.

Every run that writes to a project is journaled with the actions it took
and any problems it hit.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific operation",
	Long:  `Display the actions and errors of one run. A unique ID prefix is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getJournal returns the journal at the configured directory.
func getJournal() (*journal.Journal, error) {
	j, err := journal.New(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

// runHistory lists recent operations.
func runHistory(_ *cobra.Command, _ []string) error {
	j, err := getJournal()
	if err != nil {
		return err
	}
	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	return render(historyReport(entries))
}

// historyReport lists entries, newest first.
func historyReport(entries []journal.Entry) *output.Report {
	r := &output.Report{Kind: output.KindHistory, Title: "Maestro History", Success: true}
	if len(entries) == 0 {
		r.Hints = append(r.Hints, "No history entries found. Run 'maestro install' to get started.")
		return r
	}
	sec := output.Section{Title: "Operations"}
	for _, e := range entries {
		st := output.StatusOK
		if !e.Success {
			st = output.StatusWarn
		}
		sec.Items = append(sec.Items, output.Item{
			Name:   truncateString(e.ID, 8) + "  " + string(e.Operation),
			Status: st,
			Detail: fmt.Sprintf("%s  %s  %s", humanize.Time(e.Timestamp), e.Version, e.Project),
		})
	}
	r.Sections = append(r.Sections, sec)
	r.Hints = append(r.Hints,
		fmt.Sprintf("Showing %d entries. Use --limit to see more.", len(entries)),
		"Use 'maestro history show <id>' for details on a specific entry.")
	return r
}

// runHistoryShow displays details of a specific operation.
func runHistoryShow(_ *cobra.Command, args []string) error {
	j, err := getJournal()
	if err != nil {
		return err
	}
	e, err := j.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	r := &output.Report{
		Kind:    output.KindHistory,
		Title:   "Operation Details",
		Project: e.Project,
		Success: e.Success,
		Actions: e.Actions,
		Errors:  e.Errors,
	}
	r.AddField("ID", "%s", e.ID)
	r.AddField("Timestamp", "%s", e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	r.AddField("Operation", "%s", e.Operation)
	if e.Version != "" {
		r.AddField("Version", "%s", e.Version)
	}
	return render(r)
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	j, err := getJournal()
	if err != nil {
		return err
	}

	retentionDays := cfg.Journal.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	n, err := j.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries (cutoff %s).", n, time.Now().AddDate(0, 0, -retentionDays).Format(time.DateOnly))
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
