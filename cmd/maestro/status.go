package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/installer"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/manifest"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the installation state of a project",
	Long: `Status shows the installed maestro version next to this binary's version,
when it was installed and last updated, how many files it manages, and
the runtime settings in .maestro/config.json.

Use --verify to check that every managed file is still present and
--check-update to look for a newer release.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var (
	statusVerify      bool
	statusCheckUpdate bool
)

// updateTimeout bounds the release lookup.
const updateTimeout = 5 * time.Second

func init() {
	statusCmd.Flags().BoolVar(&statusVerify, "verify", false, "check that every managed file exists")
	statusCmd.Flags().BoolVar(&statusCheckUpdate, "check-update", false, "look up the latest release")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	r, err := statusReport(dir, version, statusVerify)
	if err != nil {
		return err
	}
	if statusCheckUpdate {
		addUpdateCheck(commandContext(cmd), r, cfg.Update.URL, version)
	}
	return render(r)
}

// statusReport describes the installation in dir.
func statusReport(dir, binary string, verify bool) (*output.Report, error) {
	r := &output.Report{
		Kind:    output.KindStatus,
		Title:   "Maestro Status",
		Project: dir,
		Success: true,
	}
	if !manifest.IsInstalled(dir) {
		return nil, fmt.Errorf("%w; run 'maestro install' first", installer.ErrNotInstalled)
	}
	m, err := manifest.Read(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		r.Success = false
		r.Errors = append(r.Errors, "manifest is unreadable")
		r.Hints = append(r.Hints, "Run 'maestro install --force' to rewrite it.")
		return r, nil
	}

	r.AddField("Installed", "%s (%s)", m.Version, describeVersions(m.Version, binary))
	r.AddField("Installed at", "%s (%s)", m.InstalledAt.Local().Format(time.DateTime), humanize.Time(m.InstalledAt))
	if !m.UpdatedAt.IsZero() && !m.UpdatedAt.Equal(m.InstalledAt) {
		r.AddField("Updated", "%s", humanize.Time(m.UpdatedAt))
	}
	r.AddField("Managed files", "%d (%d skills, %d agents, %d hooks, %d rules)",
		m.Files.Count(), len(m.Files.Skills), len(m.Files.Agents), len(m.Files.Hooks), len(m.Files.Rules))
	if langs := m.Langs(); len(langs) > 0 {
		r.AddField("Rules", "%s", strings.Join(langs, ", "))
	}
	if p := m.Permissions; p != nil {
		r.AddField("Permissions", "%d project, %d user", len(p.Project), len(p.User))
	} else {
		r.AddField("Permissions", "no record (legacy install)")
	}
	if size, files := dirSize(filepath.Join(dir, filepath.FromSlash(catalog.DirRuntime))); files > 0 {
		r.AddField("Runtime data", "%s in %d files", humanize.Bytes(uint64(size)), files)
	}
	if cmp, ok := compareVersions(m.Version, binary); ok && cmp < 0 {
		r.Hints = append(r.Hints, "Run 'maestro update' to install "+binary+".")
	}

	r.Sections = append(r.Sections, runtimeSection(dir))
	if verify {
		sec := filesSection(dir, m)
		if sec.Count(output.StatusFail) > 0 {
			r.Success = false
			r.Hints = append(r.Hints, "Run 'maestro update --force' to restore missing files.")
		}
		r.Sections = append(r.Sections, sec)
	}
	return r, nil
}

// runtimeSection summarizes .maestro/config.json.
func runtimeSection(dir string) output.Section {
	sec := output.Section{Title: "Runtime config"}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(catalog.RuntimeConfig)))
	if err != nil {
		sec.Items = append(sec.Items, output.Item{Name: catalog.RuntimeConfig, Status: output.StatusWarn, Detail: "missing"})
		return sec
	}
	var rc installer.RuntimeConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		sec.Items = append(sec.Items, output.Item{Name: catalog.RuntimeConfig, Status: output.StatusWarn, Detail: "invalid JSON"})
		return sec
	}

	sec.Items = append(sec.Items, output.Item{Name: "preset", Status: output.StatusInfo, Detail: rc.Policy.Preset})
	enabled := func(name string, on bool, kind string) {
		st, detail := output.StatusSkip, kind+" disabled"
		if on {
			st, detail = output.StatusOK, kind+" enabled"
		}
		sec.Items = append(sec.Items, output.Item{Name: name, Status: st, Detail: detail})
	}
	enabled("codex", rc.Tools.Codex, "tool")
	enabled("gemini", rc.Tools.Gemini, "tool")
	enabled("spec-kit", rc.Tools.SpecKit, "tool")
	enabled("openspec", rc.Tools.OpenSpec, "tool")
	enabled("sequential-thinking", rc.MCPServers.SequentialThinking, "MCP")
	enabled("context7", rc.MCPServers.Context7, "MCP")
	enabled("open-websearch", rc.MCPServers.OpenWebsearch, "MCP")
	enabled("serena", rc.MCPServers.Serena, "MCP")
	return sec
}

// filesSection lists managed files that no longer exist.
func filesSection(dir string, m *manifest.Manifest) output.Section {
	sec := output.Section{Title: "Managed files"}
	for _, rel := range m.Files.All() {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			sec.Items = append(sec.Items, output.Item{Name: rel, Status: output.StatusFail, Detail: "missing"})
		}
	}
	if len(sec.Items) == 0 {
		sec.Items = append(sec.Items, output.Item{
			Name:   "all present",
			Status: output.StatusOK,
			Detail: fmt.Sprintf("%d files", m.Files.Count()),
		})
	}
	return sec
}

// dirSize totals the regular files under root.
func dirSize(root string) (int64, int) {
	var size, files atomic.Int64
	conf := fastwalk.Config{Follow: false}
	_ = fastwalk.Walk(&conf, root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size.Add(info.Size())
		files.Add(1)
		return nil
	})
	return size.Load(), int(files.Load())
}

// release is the part of a GitHub release we read.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// latestRelease fetches the latest release from url.
func latestRelease(ctx context.Context, url string) (*release, error) {
	if url == "" {
		return nil, errors.New("update.url is not set")
	}
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "maestro/"+version)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest release: %s", resp.Status)
	}
	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode latest release: %w", err)
	}
	if rel.TagName == "" {
		return nil, errors.New("latest release has no tag")
	}
	return &rel, nil
}

// addUpdateCheck adds the release lookup to r. Lookup failures are
// warnings.
func addUpdateCheck(ctx context.Context, r *output.Report, url, binary string) {
	rel, err := latestRelease(ctx, url)
	if err != nil {
		logger.Warn("update check failed", "err", err)
		r.Warnings = append(r.Warnings, "update check failed: "+err.Error())
		return
	}
	latest := strings.TrimPrefix(rel.TagName, "v")
	r.AddField("Latest release", "%s", latest)
	if cmp, ok := compareVersions(latest, binary); ok && cmp > 0 {
		hint := "A newer maestro (" + latest + ") is available"
		if rel.HTMLURL != "" {
			hint += ": " + rel.HTMLURL
		}
		r.Hints = append(r.Hints, hint)
	}
}
