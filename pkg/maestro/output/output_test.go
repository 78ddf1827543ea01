package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	r := &Report{
		Kind:    KindDoctor,
		Title:   "maestro doctor",
		Project: "/work/app",
		Success: true,
		Sections: []Section{
			{Title: "Tools", Items: []Item{
				{Name: "uv", Status: StatusOK, Detail: "uv 0.5.1"},
				{Name: "specify", Status: StatusFail, Detail: "not installed"},
			}},
			{Title: "MCP servers", Items: []Item{
				{Name: "context7", Status: StatusWarn, Detail: "not configured"},
			}},
		},
		Actions:  []string{"installed 19 skills"},
		Warnings: []string{"legacy hooks found"},
		Hints:    []string{"run maestro install"},
	}
	r.AddField("Version", "v%s", "1.2.0")
	return r
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"json", "plain", "pretty", "yaml"}, Available())
	for _, name := range Available() {
		f, err := Get(name)
		require.NoError(t, err)
		assert.NotNil(t, f)
	}
	_, err := Get("xml")
	assert.ErrorContains(t, err, "xml")

	reg := NewRegistry()
	reg.Register("x", func() Formatter { return &PlainFormatter{} })
	assert.Equal(t, []string{"x"}, reg.Available())
}

func TestTally(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	assert.Equal(t, map[Status]int{StatusOK: 1, StatusFail: 1, StatusWarn: 1}, r.Tally())
	assert.Equal(t, 1, r.Sections[0].Count(StatusFail))
}

func TestPrettyFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleReport()))
	out := buf.String()

	for _, want := range []string{"maestro doctor", "/work/app", "Version:", "v1.2.0", "Tools", "specify", "not installed", "installed 19 skills", "legacy hooks found", "run maestro install", "1 issue(s)"} {
		assert.Contains(t, out, want)
	}
}

func TestPrettyFormatter_EmptySectionAndDryRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Report{Title: "maestro uninstall", DryRun: true, Sections: []Section{{Title: "Files"}}, Errors: []string{"boom"}}
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "Completed with errors")
}

func TestPlainFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleReport()))
	out := buf.String()

	assert.NotContains(t, out, "\x1b[", "plain output has no escape codes")
	assert.Contains(t, out, "[Tools]")
	assert.Contains(t, out, "fail specify")
	assert.Contains(t, out, "warning: legacy hooks found")
	assert.True(t, strings.HasSuffix(out, "success: true\n"))
}

func TestJSONFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleReport()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "doctor", doc["kind"])
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, map[string]any{"ok": 1.0, "fail": 1.0, "warn": 1.0}, doc["summary"])
	assert.NotContains(t, doc, "dry_run")
	assert.Len(t, doc["sections"], 2)
}

func TestYAMLFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleReport()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "maestro doctor", doc["title"])
	assert.Equal(t, []any{"installed 19 skills"}, doc["actions"])
	assert.Contains(t, doc, "summary")
}
