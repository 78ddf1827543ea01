package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := viper.New()
	Setup(v, "")
	v.SetConfigName("maestro-test-absent")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, home, cfg.HomeDir)
	assert.Equal(t, DefaultOutputFormat, cfg.Output.Format)
	assert.Equal(t, DefaultShortTimeout, cfg.Probe.ShortTimeout)
	assert.Equal(t, DefaultLongTimeout, cfg.Probe.LongTimeout)
	assert.Equal(t, DefaultCacheTTL, cfg.Probe.CacheTTL)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, DefaultRetentionDays, cfg.Journal.RetentionDays)
	assert.NotEmpty(t, cfg.Journal.Path)
	assert.NotEmpty(t, cfg.Probe.CachePath)
	assert.NotEmpty(t, cfg.Logging.Path)
	assert.False(t, cfg.Hooks.LegacyMatch)
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MAESTRO_PROBE_CACHE_TTL", "5m")

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
home_dir: ~/alt
output:
  format: json
hooks:
  legacy_match: true
journal:
  path: ~/journal
logging:
  level: debug
  rotation:
    max_size: 1MB
`), 0o644))

	v := viper.New()
	Setup(v, file)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "alt"), cfg.HomeDir)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Hooks.LegacyMatch)
	assert.Equal(t, filepath.Join(home, "journal"), cfg.Journal.Path)
	assert.Equal(t, 5*time.Minute, cfg.Probe.CacheTTL)

	lc, err := cfg.LoggingConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, int64(1_000_000), lc.Rotation.MaxSize)
}

func TestLoad_BadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("output: [unclosed"), 0o644))

	v := viper.New()
	Setup(v, file)
	_, err := Load(v)
	assert.Error(t, err)
}

func TestLoggingConfig_BadSize(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Rotation.MaxSize = "huge"
	_, err := cfg.LoggingConfig()
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "maestro", "config.yaml")

	got, created, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, path, got)

	v := viper.New()
	Setup(v, path)
	cfg, err := Load(v)
	require.NoError(t, err, "the written default must load")
	assert.Equal(t, DefaultOutputFormat, cfg.Output.Format)
	assert.Equal(t, DefaultLongTimeout, cfg.Probe.LongTimeout)
	assert.Equal(t, home, cfg.HomeDir)
	assert.Equal(t, "info", cfg.Logging.Components["installer"])

	_, created, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, created, "existing file is kept")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	for in, want := range map[string]string{
		"~":         home,
		"~/x/y":     filepath.Join(home, "x", "y"),
		"/abs":      "/abs",
		"rel/~":     "rel/~",
		"~other/id": "~other/id",
		"":          "",
	} {
		got, err := ExpandPath(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
