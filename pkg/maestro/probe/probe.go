// Package probe inspects the host: which CLI tools are installed, which
// MCP servers Claude Code knows about, and whether workflow commands are
// registered in a project. It also runs the install commands for missing
// tools. Every probe failure is soft and shows up as "not installed".
package probe

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
)

var logger = logging.Get("probe")

// Default timeouts.
const (
	DefaultShortTimeout = 10 * time.Second
	DefaultLongTimeout  = 2 * time.Minute
)

// ToolStatus is a catalog tool plus what the probe found.
type ToolStatus struct {
	catalog.Tool
	Installed bool
	Version   string
}

// MCPStatus is a catalog MCP server plus whether it is configured.
type MCPStatus struct {
	catalog.MCPServer
	Configured bool
}

// WorkflowStatus reports which workflow command sets are registered in a
// project.
type WorkflowStatus struct {
	SpecKit  bool
	OpenSpec bool
}

// HostStatus describes a host CLI such as claude or git.
type HostStatus struct {
	Name      string
	Installed bool
	Path      string
	Version   string
}

// Options configures a Prober.
type Options struct {
	Runner       Runner
	ShortTimeout time.Duration
	LongTimeout  time.Duration
	// Cache, when set, serves tool and MCP results until they expire.
	Cache *Cache
	// Stdout and Stderr receive live install output.
	Stdout io.Writer
	Stderr io.Writer
}

// Prober runs host probes.
type Prober struct {
	runner Runner
	short  time.Duration
	long   time.Duration
	cache  *Cache
	stdout io.Writer
	stderr io.Writer
}

// New creates a Prober. Zero options fall back to ExecRunner, the default
// timeouts and the process streams.
func New(opts Options) *Prober {
	p := &Prober{
		runner: opts.Runner,
		short:  opts.ShortTimeout,
		long:   opts.LongTimeout,
		cache:  opts.Cache,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
	if p.runner == nil {
		p.runner = ExecRunner{}
	}
	if p.short <= 0 {
		p.short = DefaultShortTimeout
	}
	if p.long <= 0 {
		p.long = DefaultLongTimeout
	}
	if p.stdout == nil {
		p.stdout = os.Stdout
	}
	if p.stderr == nil {
		p.stderr = os.Stderr
	}
	return p
}

// version runs `name --version`, then `name -V`, and returns the first
// non-empty output line.
func (p *Prober) version(ctx context.Context, name string) string {
	for _, flag := range []string{"--version", "-V"} {
		ctx, cancel := context.WithTimeout(ctx, p.short)
		out, err := p.runner.Output(ctx, name, flag)
		cancel()
		if err != nil {
			continue
		}
		if line := firstLine(out); line != "" {
			return line
		}
	}
	return ""
}

func firstLine(s string) string {
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

func (p *Prober) host(ctx context.Context, name string) HostStatus {
	st := HostStatus{Name: name}
	path, err := p.runner.LookPath(name)
	if err != nil {
		return st
	}
	st.Installed = true
	st.Path = path
	st.Version = p.version(ctx, name)
	return st
}

// Tools probes every catalog tool.
func (p *Prober) Tools(ctx context.Context) []ToolStatus {
	var out []ToolStatus
	if p.fromCache(toolsKey, &out) {
		return out
	}
	out = make([]ToolStatus, 0, len(catalog.Tools))
	for _, t := range catalog.Tools {
		h := p.host(ctx, t.Name)
		out = append(out, ToolStatus{Tool: t, Installed: h.Installed, Version: h.Version})
	}
	p.toCache(toolsKey, out)
	return out
}

// MCPServers reports which catalog servers `claude mcp list` shows. Without
// a working claude CLI every server is reported unconfigured.
func (p *Prober) MCPServers(ctx context.Context) []MCPStatus {
	var out []MCPStatus
	if p.fromCache(mcpKey, &out) {
		return out
	}

	configured := map[string]bool{}
	listed := false
	if _, err := p.runner.LookPath("claude"); err == nil {
		ctx, cancel := context.WithTimeout(ctx, p.short)
		text, err := p.runner.Output(ctx, "claude", "mcp", "list")
		cancel()
		if err != nil {
			logger.Warn("claude mcp list failed", "err", err)
		} else {
			configured = ParseMCPList(text)
			listed = true
		}
	}

	out = make([]MCPStatus, 0, len(catalog.MCPServers))
	for _, s := range catalog.MCPServers {
		out = append(out, MCPStatus{MCPServer: s, Configured: configured[s.Name]})
	}
	if listed {
		p.toCache(mcpKey, out)
	}
	return out
}

// ParseMCPList extracts server names from `claude mcp list` output: the
// first token of each line, cut at whitespace or a colon.
func ParseMCPList(text string) map[string]bool {
	names := make(map[string]bool)
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, _, _ := strings.Cut(line, ":")
		if fields := strings.Fields(name); len(fields) > 0 {
			names[fields[0]] = true
		}
	}
	return names
}

// WorkflowCommands looks for spec-kit and OpenSpec commands or skills
// under root/.claude.
func WorkflowCommands(root string) WorkflowStatus {
	var st WorkflowStatus
	commands := filepath.Join(root, ".claude", "commands")
	if entries, err := os.ReadDir(commands); err == nil {
		for _, e := range entries {
			n := e.Name()
			switch {
			case strings.HasPrefix(n, "speckit.") || strings.HasPrefix(n, "speckit-"):
				st.SpecKit = true
			case n == "opsx" && e.IsDir():
				st.OpenSpec = true
			}
		}
	}
	if entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(catalog.DirSkills))); err == nil {
		for _, e := range entries {
			n := e.Name()
			switch {
			case strings.HasPrefix(n, "speckit"):
				st.SpecKit = true
			case strings.HasPrefix(n, "opsx") || strings.HasPrefix(n, "openspec"):
				st.OpenSpec = true
			}
		}
	}
	return st
}

// Install runs an install command with the long timeout, streaming its
// output. Cached probe results are dropped afterwards either way.
func (p *Prober) Install(ctx context.Context, command string) error {
	ctx, cancel := context.WithTimeout(ctx, p.long)
	defer cancel()

	logger.Info("running install command", "command", command)
	err := p.runner.Shell(ctx, command, p.stdout, p.stderr)
	if p.cache != nil {
		if cerr := p.cache.Invalidate(); cerr != nil {
			logger.Warn("could not invalidate probe cache", "err", cerr)
		}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("install command timed out", "command", command, "timeout", p.long)
	}
	return err
}

// Claude reports the claude CLI.
func (p *Prober) Claude(ctx context.Context) HostStatus { return p.host(ctx, "claude") }

// Git reports the git CLI.
func (p *Prober) Git(ctx context.Context) HostStatus { return p.host(ctx, "git") }

func (p *Prober) fromCache(key string, v any) bool {
	if p.cache == nil {
		return false
	}
	err := p.cache.Get(key, v)
	if err == nil {
		logger.Debug("probe cache hit", "key", key)
		return true
	}
	if !errors.Is(err, ErrNotFound) {
		logger.Warn("probe cache read failed", "key", key, "err", err)
	}
	return false
}

func (p *Prober) toCache(key string, v any) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Put(key, v); err != nil {
		logger.Warn("probe cache write failed", "key", key, "err", err)
	}
}
