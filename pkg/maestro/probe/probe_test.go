package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers from fixed tables and records what ran.
type fakeRunner struct {
	paths   map[string]string
	outputs map[string]string
	failing map[string]bool
	calls   []string
	shell   []string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: not found", name)
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, key)
	if f.failing[key] {
		return "", errors.New("exit status 1")
	}
	out, ok := f.outputs[key]
	if !ok {
		return "", errors.New("exit status 2")
	}
	return out, nil
}

func (f *fakeRunner) Shell(_ context.Context, command string, stdout, _ io.Writer) error {
	f.shell = append(f.shell, command)
	_, err := io.WriteString(stdout, "installing\n")
	return err
}

func TestTools(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{
		paths: map[string]string{"uv": "/usr/bin/uv", "codex": "/usr/local/bin/codex"},
		outputs: map[string]string{
			"uv --version": "\nuv 0.5.1 (abc 2024-10-01)\nextra\n",
			"codex -V":     "codex-cli 0.1.0\n",
		},
	}
	p := New(Options{Runner: r})

	got := p.Tools(context.Background())
	byName := map[string]ToolStatus{}
	for _, s := range got {
		byName[s.Name] = s
	}

	assert.True(t, byName["uv"].Installed)
	assert.Equal(t, "uv 0.5.1 (abc 2024-10-01)", byName["uv"].Version)
	assert.True(t, byName["uv"].Required)
	assert.True(t, byName["codex"].Installed)
	assert.Equal(t, "codex-cli 0.1.0", byName["codex"].Version, "falls back to -V")
	assert.False(t, byName["specify"].Installed)
	assert.Empty(t, byName["specify"].Version)
	assert.NotContains(t, r.calls, "specify --version", "missing tools are not executed")
}

func TestParseMCPList(t *testing.T) {
	t.Parallel()

	out := `Checking MCP server health...

context7: npx -y @upstash/context7-mcp@latest - ✓ Connected
serena uvx serena-mcp
  sequential-thinking:npx thing
`
	got := ParseMCPList(out)
	assert.True(t, got["context7"])
	assert.True(t, got["serena"])
	assert.True(t, got["sequential-thinking"])
	assert.False(t, got["open-websearch"])
}

func TestMCPServers(t *testing.T) {
	t.Parallel()

	t.Run("parses claude output", func(t *testing.T) {
		t.Parallel()
		r := &fakeRunner{
			paths:   map[string]string{"claude": "/bin/claude"},
			outputs: map[string]string{"claude mcp list": "context7: npx ...\n"},
		}
		got := New(Options{Runner: r}).MCPServers(context.Background())
		for _, s := range got {
			assert.Equal(t, s.Name == "context7", s.Configured, s.Name)
		}
	})

	t.Run("no claude means nothing configured", func(t *testing.T) {
		t.Parallel()
		r := &fakeRunner{}
		got := New(Options{Runner: r}).MCPServers(context.Background())
		require.NotEmpty(t, got)
		for _, s := range got {
			assert.False(t, s.Configured)
		}
		assert.Empty(t, r.calls)
	})

	t.Run("failing list is soft", func(t *testing.T) {
		t.Parallel()
		r := &fakeRunner{
			paths:   map[string]string{"claude": "/bin/claude"},
			failing: map[string]bool{"claude mcp list": true},
		}
		got := New(Options{Runner: r}).MCPServers(context.Background())
		for _, s := range got {
			assert.False(t, s.Configured)
		}
	})
}

func TestWorkflowCommands(t *testing.T) {
	t.Parallel()

	mk := func(t *testing.T, root string, dirs ...string) {
		t.Helper()
		for _, d := range dirs {
			require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o755))
		}
	}

	tests := []struct {
		name string
		dirs []string
		file string
		want WorkflowStatus
	}{
		{name: "empty"},
		{name: "speckit command file", file: ".claude/commands/speckit.plan.md", want: WorkflowStatus{SpecKit: true}},
		{name: "opsx dir", dirs: []string{".claude/commands/opsx"}, want: WorkflowStatus{OpenSpec: true}},
		{name: "skills", dirs: []string{".claude/skills/speckit-tasks", ".claude/skills/openspec-apply"}, want: WorkflowStatus{SpecKit: true, OpenSpec: true}},
		{name: "opsx file is not a dir", file: ".claude/commands/opsx", want: WorkflowStatus{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			mk(t, root, tt.dirs...)
			if tt.file != "" {
				p := filepath.Join(root, filepath.FromSlash(tt.file))
				mk(t, root, filepath.ToSlash(filepath.Dir(tt.file)))
				require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
			}
			assert.Equal(t, tt.want, WorkflowCommands(root))
		})
	}
}

func TestInstall_StreamsOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := &fakeRunner{}
	p := New(Options{Runner: r, Stdout: &out, Stderr: io.Discard})
	require.NoError(t, p.Install(context.Background(), "npm i -g x"))
	assert.Equal(t, []string{"npm i -g x"}, r.shell)
	assert.Equal(t, "installing\n", out.String())
}

func TestHost(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{
		paths:   map[string]string{"git": "/usr/bin/git"},
		outputs: map[string]string{"git --version": "git version 2.45.0\n"},
	}
	p := New(Options{Runner: r})

	g := p.Git(context.Background())
	assert.Equal(t, HostStatus{Name: "git", Installed: true, Path: "/usr/bin/git", Version: "git version 2.45.0"}, g)
	assert.False(t, p.Claude(context.Background()).Installed)
}

func TestCache(t *testing.T) {
	t.Parallel()

	c, err := OpenCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var miss []ToolStatus
	assert.ErrorIs(t, c.Get(toolsKey, &miss), ErrNotFound)

	r := &fakeRunner{paths: map[string]string{"uv": "/usr/bin/uv"}, outputs: map[string]string{"uv --version": "uv 1.0\n"}}
	p := New(Options{Runner: r, Cache: c, Stdout: io.Discard, Stderr: io.Discard})

	first := p.Tools(context.Background())
	calls := len(r.calls)
	second := p.Tools(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, calls, len(r.calls), "second probe is served from cache")

	require.NoError(t, p.Install(context.Background(), "true"))
	assert.ErrorIs(t, c.Get(toolsKey, &miss), ErrNotFound, "install invalidates")
}
