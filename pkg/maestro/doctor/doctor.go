// Package doctor diagnoses the host and, with Verify, a project's maestro
// installation. Findings never fail the run; they are graded and counted.
package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/probe"
)

var logger = logging.Get("doctor")

// Status grades a check.
type Status string

const (
	StatusOK    Status = "ok"
	StatusInfo  Status = "info"
	StatusWarn  Status = "warn"
	StatusIssue Status = "fail"
)

// Check is one finding.
type Check struct {
	Name   string
	Status Status
	Detail string
}

// Section groups checks.
type Section struct {
	Title  string
	Checks []Check
}

func (s *Section) add(name string, st Status, format string, args ...any) {
	s.Checks = append(s.Checks, Check{Name: name, Status: st, Detail: fmt.Sprintf(format, args...)})
}

// Report is the outcome of a doctor run.
type Report struct {
	Sections []Section
	// Installed is set when the project has a manifest.
	Installed bool
	Version   string
}

// Count returns how many checks have status st.
func (r *Report) Count(st Status) int {
	n := 0
	for _, s := range r.Sections {
		for _, c := range s.Checks {
			if c.Status == st {
				n++
			}
		}
	}
	return n
}

// Issues counts failed checks.
func (r *Report) Issues() int { return r.Count(StatusIssue) }

// Warnings counts warnings.
func (r *Report) Warnings() int { return r.Count(StatusWarn) }

// Prober is the subset of probe.Prober doctor needs.
type Prober interface {
	Claude(ctx context.Context) probe.HostStatus
	Git(ctx context.Context) probe.HostStatus
	Tools(ctx context.Context) []probe.ToolStatus
	MCPServers(ctx context.Context) []probe.MCPStatus
}

var _ Prober = (*probe.Prober)(nil)

// Options configures Run.
type Options struct {
	ProjectDir string
	Prober     Prober
	// Verify adds the installation checks.
	Verify bool
}

// Run performs every check.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.ProjectDir == "" {
		return nil, errors.New("project directory is required")
	}
	if opts.Prober == nil {
		opts.Prober = probe.New(probe.Options{})
	}

	r := &Report{}
	r.Sections = append(r.Sections,
		environment(ctx, opts),
		tools(ctx, opts.Prober),
		mcpServers(ctx, opts.Prober),
		workflows(opts.ProjectDir),
	)

	install, m := installation(opts.ProjectDir)
	r.Sections = append(r.Sections, install)
	if m != nil {
		r.Installed = true
		r.Version = m.Version
		if opts.Verify {
			r.Sections = append(r.Sections, verify(opts.ProjectDir, m))
		}
	}
	logger.Info("doctor finished", "issues", r.Issues(), "warnings", r.Warnings())
	return r, nil
}

func environment(ctx context.Context, opts Options) Section {
	s := Section{Title: "Environment"}

	claude := opts.Prober.Claude(ctx)
	if claude.Installed {
		s.add("claude", StatusOK, "%s", orPath(claude))
	} else {
		s.add("claude", StatusIssue, "Claude Code CLI not found on PATH")
	}

	g := opts.Prober.Git(ctx)
	if g.Installed {
		s.add("git", StatusOK, "%s", orPath(g))
	} else {
		s.add("git", StatusWarn, "git not found on PATH")
	}

	root, err := repoRoot(opts.ProjectDir)
	switch {
	case err == nil:
		s.add("repository", StatusOK, "git work tree at %s", root)
	case errors.Is(err, git.ErrRepositoryNotExists):
		s.add("repository", StatusWarn, "project is not inside a git repository")
	default:
		s.add("repository", StatusWarn, "could not open repository: %v", err)
	}
	return s
}

func orPath(h probe.HostStatus) string {
	if h.Version != "" {
		return h.Version
	}
	return h.Path
}

// repoRoot returns the work tree root of the repository containing dir.
func repoRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

func tools(ctx context.Context, p Prober) Section {
	s := Section{Title: "Tools"}
	for _, t := range p.Tools(ctx) {
		switch {
		case t.Installed:
			s.add(t.Name, StatusOK, "%s", t.Version)
		case t.Required:
			s.add(t.Name, StatusIssue, "required; install with: %s", t.InstallCmd)
		default:
			s.add(t.Name, StatusWarn, "optional; install with: %s", t.InstallCmd)
		}
	}
	return s
}

func mcpServers(ctx context.Context, p Prober) Section {
	s := Section{Title: "MCP servers"}
	for _, m := range p.MCPServers(ctx) {
		switch {
		case m.Configured:
			s.add(m.Name, StatusOK, "configured")
		case m.Recommended:
			s.add(m.Name, StatusWarn, "recommended; add with: %s", m.AddCmd)
		default:
			s.add(m.Name, StatusInfo, "optional; add with: %s", m.AddCmd)
		}
	}
	return s
}

func workflows(dir string) Section {
	s := Section{Title: "Workflow commands"}
	w := probe.WorkflowCommands(dir)
	if w.SpecKit {
		s.add("spec-kit", StatusOK, "commands registered")
	} else {
		s.add("spec-kit", StatusInfo, "not registered; run: %s", catalog.SpecKitInitCmd)
	}
	if w.OpenSpec {
		s.add("openspec", StatusOK, "commands registered")
	} else {
		s.add("openspec", StatusInfo, "not registered; run: %s", catalog.OpenSpecInitCmd)
	}
	return s
}

func installation(dir string) (Section, *manifest.Manifest) {
	s := Section{Title: "Installation"}
	if !manifest.IsInstalled(dir) {
		s.add("manifest", StatusInfo, "maestro is not installed in this project")
		return s, nil
	}
	m, err := manifest.Read(dir)
	if err != nil {
		s.add("manifest", StatusIssue, "%v", err)
		return s, nil
	}
	if m == nil {
		s.add("manifest", StatusIssue, "%s is malformed; reinstall with --force", catalog.ManifestFile)
		return s, nil
	}
	s.add("manifest", StatusOK, "v%s, %d managed files", m.Version, m.Files.Count())
	return s, m
}
