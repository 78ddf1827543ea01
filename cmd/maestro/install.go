package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/cmd/maestro/tui"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/installer"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/journal"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/probe"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install maestro into a project",
	Long: `Install copies maestro's skills, agents, hook scripts and optional coding
rules into the project's .claude directory, merges its hooks and
permissions into the Claude Code settings, adds a section to CLAUDE.md and
runtime entries to .gitignore, and records everything in
.maestro/manifest.json.

On a terminal, install first checks for the CLI tools and MCP servers the
workflows use and offers to set up the missing ones, then asks which
permission presets to enable. Use --yes to skip the questions.

Examples:
  maestro install
  maestro install -y                          # Presets for the detected project types
  maestro install -y --preset nodejs --preset python --scope both
  maestro install -y --permission 'Bash(make:*)'
  maestro install --with-rules --lang rust
  maestro install --skip-tools                # Legacy fixed permission list`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

var (
	installYes         bool
	installSkipTools   bool
	installPresets     []string
	installPermissions []string
	installScope       string
	installLegacyHooks bool
	installWithRules   bool
	installLang        string
	installDryRun      bool
	installForce       bool
)

func init() {
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "do not ask questions")
	installCmd.Flags().BoolVar(&installSkipTools, "skip-tools", false, "skip tool checks and merge the legacy permission list")
	installCmd.Flags().StringArrayVarP(&installPresets, "preset", "p", nil, "permission preset to enable (repeatable; default: detected project types)")
	installCmd.Flags().StringArrayVar(&installPermissions, "permission", nil, "extra allow-list pattern (repeatable)")
	installCmd.Flags().StringVar(&installScope, "scope", string(catalog.ScopeProject), "where permissions go: project, user or both")
	installCmd.Flags().BoolVar(&installLegacyHooks, "legacy-hooks", false, "also replace untagged hook entries from older versions")
	installCmd.Flags().BoolVar(&installWithRules, "with-rules", false, "install coding rules")
	installCmd.Flags().StringVar(&installLang, "lang", "", "rule language: "+strings.Join(catalog.RuleLangs, ", ")+" (default: all)")
	installCmd.Flags().BoolVarP(&installDryRun, "dry-run", "d", false, "show what would change without writing")
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "reinstall over an existing installation")

	rootCmd.AddCommand(installCmd)
}

// installPlan is what the questions (or the flags) decided.
type installPlan struct {
	selection *catalog.Selection
	runtime   installer.RuntimeFlags
}

func runInstall(cmd *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	if installLang != "" {
		if !catalog.IsRuleLang(installLang) {
			return fmt.Errorf("unknown rule language %q (want one of %s)", installLang, strings.Join(catalog.RuleLangs, ", "))
		}
		installWithRules = true
	}
	if manifest.IsInstalled(dir) && !installForce {
		return fmt.Errorf("%w; use 'maestro update' or --force", installer.ErrAlreadyInstalled)
	}
	src, err := assetSource()
	if err != nil {
		return err
	}

	var plan *installPlan
	if interactive() && !installYes && !installSkipTools {
		prober, closeCache := newProber()
		defer closeCache()
		plan, err = askInstallPlan(commandContext(cmd), dir, tui.Prompter{}, prober)
		if errors.Is(err, tui.ErrCancelled) {
			printInfo("Install cancelled.")
			return nil
		}
	} else {
		plan, err = flagInstallPlan(dir, cmd.Flags().Changed("preset") || cmd.Flags().Changed("permission"))
	}
	if err != nil {
		return err
	}

	res, err := installer.Install(installer.Options{
		ProjectDir:  dir,
		HomeDir:     cfg.HomeDir,
		Version:     version,
		WithRules:   installWithRules,
		Lang:        installLang,
		DryRun:      installDryRun,
		Force:       installForce,
		Selection:   plan.selection,
		LegacyHooks: installLegacyHooks || cfg.Hooks.LegacyMatch,
		Assets:      src,
		Runtime:     plan.runtime,
	})
	if err != nil {
		return err
	}
	if !installDryRun {
		recordJournal(journalEntry(journal.OpInstall, dir, version, res))
	}

	r := resultReport(output.KindInstall, "Maestro Install", dir, res)
	if res.Success && !res.DryRun {
		r.Hints = append(r.Hints,
			"Restart Claude Code in this project to load the new skills and hooks.",
			"Run 'maestro doctor --verify' to check the installation.")
	}
	return render(r)
}

// flagInstallPlan builds the plan from --preset, --permission and --scope.
// With --skip-tools and neither list given, the legacy list is used.
func flagInstallPlan(dir string, explicit bool) (*installPlan, error) {
	if installSkipTools && !explicit {
		printVerbose("Using the legacy permission list")
		return &installPlan{}, nil
	}
	scope, err := catalog.ParseScope(installScope)
	if err != nil {
		return nil, err
	}
	presets := installPresets
	if len(presets) == 0 {
		detected := catalog.DetectProjectTypes(dir)
		presets = catalog.DetectedIDs(detected)
		for _, d := range detected {
			printVerbose("Detected %s project (%s)", d.Type, d.DetectedBy)
		}
	}
	if err := checkPresets(presets); err != nil {
		return nil, err
	}
	sel := catalog.NewSelection(presets, installPermissions, scope)
	return &installPlan{selection: &sel}, nil
}

func checkPresets(ids []string) error {
	for _, id := range ids {
		if _, ok := catalog.Lookup(id); !ok {
			var known []string
			for _, p := range catalog.ProjectPresets() {
				known = append(known, p.ID)
			}
			return fmt.Errorf("unknown preset %q (available: %s)", id, strings.Join(known, ", "))
		}
	}
	return nil
}

// prompter is the subset of tui.Prompter the install questions use.
type prompter interface {
	Checklist(title string, items []tui.Item, preselected []int) ([]int, error)
	Choice(title string, items []tui.Item, def int) (int, error)
	Entries(title, placeholder string, validate func(string) error) ([]string, error)
}

// hostProber is the subset of probe.Prober the install questions use.
type hostProber interface {
	Tools(ctx context.Context) []probe.ToolStatus
	MCPServers(ctx context.Context) []probe.MCPStatus
	Install(ctx context.Context, command string) error
}

// askInstallPlan walks through tools, MCP servers, workflows and
// permissions.
func askInstallPlan(ctx context.Context, dir string, ask prompter, p hostProber) (*installPlan, error) {
	tools, err := setupTools(ctx, ask, p)
	if err != nil {
		return nil, err
	}
	servers, err := setupMCPServers(ctx, ask, p)
	if err != nil {
		return nil, err
	}
	workflowHints(dir)

	sel, err := askPermissions(dir, ask)
	if err != nil {
		return nil, err
	}
	return &installPlan{selection: sel, runtime: runtimeFlags(tools, servers)}, nil
}

func setupTools(ctx context.Context, ask prompter, p hostProber) ([]probe.ToolStatus, error) {
	tools := p.Tools(ctx)
	printInfo("CLI tools:")
	var missing []probe.ToolStatus
	for _, t := range tools {
		printInfo("  %s", toolLine(t))
		if !t.Installed {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return tools, nil
	}

	items := make([]tui.Item, len(missing))
	var pre []int
	for i, t := range missing {
		items[i] = tui.Item{Label: t.Name, Detail: t.InstallCmd}
		if t.Required {
			pre = append(pre, i)
		}
	}
	chosen, err := ask.Checklist("Install missing tools?", items, pre)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return tools, nil
	}
	for _, i := range chosen {
		runInstallCommand(ctx, p, missing[i].Name, missing[i].InstallCmd)
	}
	return p.Tools(ctx), nil
}

func setupMCPServers(ctx context.Context, ask prompter, p hostProber) ([]probe.MCPStatus, error) {
	servers := p.MCPServers(ctx)
	printInfo("MCP servers:")
	var missing []probe.MCPStatus
	for _, s := range servers {
		mark := "✓"
		if !s.Configured {
			mark = "✗"
			missing = append(missing, s)
		}
		printInfo("  %s %-20s %s", mark, s.Name, s.Description)
	}
	if len(missing) == 0 {
		return servers, nil
	}

	items := make([]tui.Item, len(missing))
	var pre []int
	for i, s := range missing {
		items[i] = tui.Item{Label: s.Name, Detail: s.Description}
		if s.Recommended {
			pre = append(pre, i)
		}
	}
	chosen, err := ask.Checklist("Add MCP servers to Claude Code?", items, pre)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return servers, nil
	}
	for _, i := range chosen {
		runInstallCommand(ctx, p, missing[i].Name, missing[i].AddCmd)
	}
	return p.MCPServers(ctx), nil
}

// runInstallCommand runs one setup command. Failures are reported and
// the flow goes on.
func runInstallCommand(ctx context.Context, p hostProber, name, command string) {
	printInfo("→ %s: %s", name, command)
	if err := p.Install(ctx, command); err != nil {
		printError("%s: %v", name, err)
		return
	}
	printInfo("✓ %s", name)
}

func toolLine(t probe.ToolStatus) string {
	kind := "optional"
	if t.Required {
		kind = "required"
	}
	if t.Installed {
		return fmt.Sprintf("✓ %-10s %s", t.Name, t.Version)
	}
	return fmt.Sprintf("✗ %-10s not installed (%s)", t.Name, kind)
}

func workflowHints(dir string) {
	wf := probe.WorkflowCommands(dir)
	if !wf.SpecKit {
		printInfo("spec-kit commands are not registered here. Run: %s", catalog.SpecKitInitCmd)
	}
	if !wf.OpenSpec {
		printInfo("OpenSpec commands are not registered here. Run: %s", catalog.OpenSpecInitCmd)
	}
}

var scopeChoices = []catalog.Scope{catalog.ScopeProject, catalog.ScopeUser, catalog.ScopeBoth}

func askPermissions(dir string, ask prompter) (*catalog.Selection, error) {
	presets := catalog.ProjectPresets()
	detected := make(map[string]bool)
	for _, id := range catalog.DetectedIDs(catalog.DetectProjectTypes(dir)) {
		detected[id] = true
	}
	items := make([]tui.Item, len(presets))
	var pre []int
	for i, p := range presets {
		items[i] = tui.Item{Label: p.Label, Detail: p.Description}
		if detected[p.ID] {
			pre = append(pre, i)
		}
	}
	chosen, err := ask.Checklist("Permission presets (base is always included)", items, pre)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(chosen))
	for i, c := range chosen {
		ids[i] = presets[c].ID
	}

	custom, err := ask.Entries("Extra allow-list patterns", "Bash(make:*)", validPattern)
	if err != nil {
		return nil, err
	}

	scopes := []tui.Item{
		{Label: "Project", Detail: ".claude/settings.local.json"},
		{Label: "User", Detail: "~/.claude/settings.local.json"},
		{Label: "Both"},
	}
	idx, err := ask.Choice("Where should the permissions go?", scopes, 0)
	if err != nil {
		return nil, err
	}
	sel := catalog.NewSelection(ids, custom, scopeChoices[idx])
	return &sel, nil
}

// validPattern rejects entries that cannot be allow-list patterns.
func validPattern(s string) error {
	if strings.ContainsAny(s, "\"\n") {
		return errors.New("patterns cannot contain quotes or newlines")
	}
	if open := strings.Index(s, "("); open >= 0 && !strings.HasSuffix(s, ")") {
		return errors.New("unbalanced parenthesis")
	}
	return nil
}

// runtimeFlags seeds .maestro/config.json from what is available.
func runtimeFlags(tools []probe.ToolStatus, servers []probe.MCPStatus) installer.RuntimeFlags {
	has := make(map[string]bool)
	for _, t := range tools {
		has[t.Name] = t.Installed
	}
	mcp := make(map[string]bool)
	for _, s := range servers {
		mcp[s.Name] = s.Configured
	}
	return installer.RuntimeFlags{
		Codex:              has["codex"],
		Gemini:             has["gemini"],
		SpecKit:            has["specify"],
		OpenSpec:           has["openspec"],
		SequentialThinking: mcp["sequential-thinking"],
		Context7:           mcp["context7"],
		OpenWebsearch:      mcp["open-websearch"],
		Serena:             mcp["serena"],
	}
}
