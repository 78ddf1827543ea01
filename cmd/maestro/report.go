package main

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/doctor"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/installer"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/journal"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
)

// resultReport converts an installer run into a report.
func resultReport(kind output.Kind, title, dir string, res *installer.Result) *output.Report {
	r := &output.Report{
		Kind:    kind,
		Title:   title,
		Project: dir,
		Success: res.Success,
		DryRun:  res.DryRun,
		Actions: res.Actions,
		Errors:  res.Errors,
	}
	if res.PreviousVersion != "" {
		r.AddField("Previous version", "%s", res.PreviousVersion)
	}
	if m := res.Manifest; m != nil {
		r.AddField("Version", "%s", m.Version)
		r.AddField("Managed files", "%d (%d skills, %d agents, %d hooks, %d rules)",
			m.Files.Count(), len(m.Files.Skills), len(m.Files.Agents), len(m.Files.Hooks), len(m.Files.Rules))
		if langs := m.Langs(); len(langs) > 0 {
			r.AddField("Rules", "%s", strings.Join(langs, ", "))
		}
		if p := m.Permissions; p != nil {
			r.AddField("Permissions", "%d project, %d user", len(p.Project), len(p.User))
		}
	}
	if res.AlreadyCurrent {
		r.Hints = append(r.Hints, "Already up to date. Use --force to reinstall the managed files.")
	}
	if res.DryRun {
		r.Hints = append(r.Hints, "Dry run: nothing was written. Re-run without --dry-run to apply.")
	}
	return r
}

var doctorStatus = map[doctor.Status]output.Status{
	doctor.StatusOK:    output.StatusOK,
	doctor.StatusInfo:  output.StatusInfo,
	doctor.StatusWarn:  output.StatusWarn,
	doctor.StatusIssue: output.StatusFail,
}

// doctorReport converts a doctor run into a report. Issues make the report
// unsuccessful without failing the command.
func doctorReport(dir string, d *doctor.Report) *output.Report {
	r := &output.Report{
		Kind:    output.KindDoctor,
		Title:   "Maestro Doctor",
		Project: dir,
		Success: d.Issues() == 0,
	}
	if d.Installed {
		r.AddField("Installed", "%s", d.Version)
	} else {
		r.AddField("Installed", "no")
	}
	for _, s := range d.Sections {
		sec := output.Section{Title: s.Title}
		for _, c := range s.Checks {
			sec.Items = append(sec.Items, output.Item{Name: c.Name, Status: doctorStatus[c.Status], Detail: c.Detail})
		}
		r.Sections = append(r.Sections, sec)
	}
	if d.Issues() > 0 {
		r.Hints = append(r.Hints, "Fix the failed checks, then run 'maestro doctor' again.")
	}
	if !d.Installed {
		r.Hints = append(r.Hints, "Run 'maestro install' to set up this project.")
	}
	return r
}

// journalEntry builds the journal record of an installer run.
func journalEntry(op journal.Operation, dir, ver string, res *installer.Result) journal.Entry {
	return journal.Entry{
		Operation: op,
		Project:   dir,
		Version:   ver,
		Success:   res.Success,
		Actions:   res.Actions,
		Errors:    res.Errors,
	}
}

// compareVersions orders two version strings. ok is false when either is
// not a semantic version; they are then only compared for equality.
func compareVersions(a, b string) (cmp int, ok bool) {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		if a == b {
			return 0, false
		}
		return 1, false
	}
	return va.Compare(vb), true
}

// describeVersions says how the installed version relates to this binary.
func describeVersions(installed, binary string) string {
	cmp, ok := compareVersions(installed, binary)
	switch {
	case cmp == 0:
		return "up to date"
	case !ok:
		return fmt.Sprintf("differs from this binary (%s)", binary)
	case cmp < 0:
		return fmt.Sprintf("older than this binary (%s); run 'maestro update'", binary)
	default:
		return fmt.Sprintf("newer than this binary (%s)", binary)
	}
}
