package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
)

// These tests share the package-level logging state and do not run in
// parallel.

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"", logging.LevelInfo, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"loud", logging.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, logging.ErrInvalidLevel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(got.String()), got.String())
		})
	}
}

func TestGet_BeforeInitIsSilentAndLaterWrites(t *testing.T) {
	require.NoError(t, logging.Close())

	logger := logging.Get("early")
	logger.Info("dropped")

	path := filepath.Join(t.TempDir(), "maestro.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: path}))
	t.Cleanup(func() { _ = logging.Close() })

	assert.Same(t, logger, logging.Get("early"))
	logger.Info("kept", "k", "v")
	require.NoError(t, logging.Close())

	text := readLog(t, path)
	assert.NotContains(t, text, "dropped")
	assert.Contains(t, text, "kept")
	assert.Contains(t, text, "early")
	assert.Contains(t, text, "k=v")
}

func TestInit_ComponentLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.log")
	require.NoError(t, logging.Init(logging.Config{
		Level:      "warn",
		Path:       path,
		Components: map[string]string{"installer": "debug"},
	}))
	t.Cleanup(func() { _ = logging.Close() })

	logging.Get("installer").Debug("installer detail")
	logging.Get("probe").Info("probe detail")
	logging.Get("probe").Warn("probe warning")
	require.NoError(t, logging.Close())

	text := readLog(t, path)
	assert.Contains(t, text, "installer detail")
	assert.NotContains(t, text, "probe detail")
	assert.Contains(t, text, "probe warning")
}

func TestInit_Errors(t *testing.T) {
	dir := t.TempDir()

	err := logging.Init(logging.Config{Level: "nope", Path: filepath.Join(dir, "a.log")})
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)

	err = logging.Init(logging.Config{
		Level:      "info",
		Path:       filepath.Join(dir, "b.log"),
		Components: map[string]string{"x": "nope"},
	})
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestConsoleOutput(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "maestro.log")
	require.NoError(t, logging.Init(logging.Config{
		Level:        "info",
		Path:         path,
		ConsoleLevel: "debug",
		Console:      &console,
	}))
	t.Cleanup(func() { _ = logging.Close() })

	logging.Get("cmd").With("project", "/tmp/p").Debug("resolved")
	assert.Contains(t, console.String(), "resolved")
	assert.Contains(t, console.String(), "project=/tmp/p")

	require.NoError(t, logging.Close())
	assert.NotContains(t, readLog(t, path), "resolved", "file level is info")
}
