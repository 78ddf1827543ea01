package main

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
)

// Stamped by the stavefile with -X main.version etc. An unstamped binary
// built by go install takes its version from the module instead.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the maestro build and what it installs",
	Long: `Version prints the build of this binary and the asset set it installs.
Inside a project that has maestro installed it also says how that
installation relates to this binary.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	version = moduleVersion(version)
}

func runVersion(cmd *cobra.Command, args []string) error {
	r := versionReport(version, commit, date)
	if dir, err := projectDir(); err == nil {
		addInstalledVersion(r, dir, version)
	}
	return render(r)
}

// moduleVersion returns stamped unless it is the "dev" placeholder and the
// build info carries a real module version.
func moduleVersion(stamped string) string {
	if stamped != "dev" {
		return stamped
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return stamped
	}
	return strings.TrimPrefix(info.Main.Version, "v")
}

func versionReport(v, commit, date string) *output.Report {
	r := &output.Report{Kind: output.KindVersion, Title: "maestro " + v, Success: true}
	r.AddField("Version", "%s", v)
	r.AddField("Commit", "%s", commit)
	r.AddField("Built", "%s", date)
	r.AddField("Go", "%s", runtime.Version())
	r.AddField("Platform", "%s/%s", runtime.GOOS, runtime.GOARCH)
	r.AddField("Installs", "%d skills, %d agents, %d hook scripts, rules for %s",
		len(catalog.AllSkills()), len(catalog.Agents), len(catalog.HookScripts),
		strings.Join(catalog.RuleLangs, ", "))
	return r
}

// addInstalledVersion notes the project's installed version. Projects
// without a readable manifest add nothing.
func addInstalledVersion(r *output.Report, dir, binary string) {
	m, err := manifest.Read(dir)
	if err != nil || m == nil {
		return
	}
	r.Project = dir
	r.AddField("Project", "v%s, %s", m.Version, describeVersions(m.Version, binary))
	if cmp, ok := compareVersions(m.Version, binary); ok && cmp < 0 {
		r.Hints = append(r.Hints, "Run 'maestro update' to bring this project to v"+binary)
	}
}
