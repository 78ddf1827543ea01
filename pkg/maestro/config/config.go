package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// ProbeConfig bounds shell probes and configures their cache.
type ProbeConfig struct {
	ShortTimeout time.Duration `mapstructure:"short_timeout" yaml:"short_timeout"`
	LongTimeout  time.Duration `mapstructure:"long_timeout" yaml:"long_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CachePath    string        `mapstructure:"cache_path" yaml:"cache_path"`
}

// JournalConfig configures the operation journal.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// Config is the effective configuration.
type Config struct {
	// HomeDir is the root for user-scope settings (~/.claude/...).
	HomeDir string `mapstructure:"home_dir" yaml:"home_dir"`
	// AssetsDir replaces the embedded assets with an on-disk tree.
	AssetsDir string `mapstructure:"assets_dir" yaml:"assets_dir"`

	Output struct {
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"output" yaml:"output"`

	Probe ProbeConfig `mapstructure:"probe" yaml:"probe"`

	Hooks struct {
		LegacyMatch bool `mapstructure:"legacy_match" yaml:"legacy_match"`
	} `mapstructure:"hooks" yaml:"hooks"`

	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`

	Update struct {
		URL string `mapstructure:"url" yaml:"url"`
	} `mapstructure:"update" yaml:"update"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Setup prepares v: the config file (explicit, or searched for in the XDG
// and ~/.config directories), MAESTRO_ env binding, and defaults.
func Setup(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFileName, filepath.Ext(DefaultConfigFileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("home_dir", "")
	v.SetDefault("assets_dir", "")
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("probe.short_timeout", DefaultShortTimeout)
	v.SetDefault("probe.long_timeout", DefaultLongTimeout)
	v.SetDefault("probe.cache_ttl", DefaultCacheTTL)
	v.SetDefault("probe.cache_path", "")
	v.SetDefault("hooks.legacy_match", false)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "")
	v.SetDefault("journal.retention_days", DefaultRetentionDays)
	v.SetDefault("update.url", DefaultUpdateURL)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logging.rotation.max_age", DefaultLogMaxAgeDays)
	v.SetDefault("logging.components", map[string]string{})
}

// Load reads the config file into v, if there is one, and decodes the
// effective configuration. Empty paths are filled with their XDG defaults
// and a leading ~ is expanded.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	for _, p := range []*string{&cfg.HomeDir, &cfg.AssetsDir, &cfg.Journal.Path, &cfg.Probe.CachePath, &cfg.Logging.Path} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}
	if cfg.HomeDir == "" {
		if cfg.HomeDir, err = os.UserHomeDir(); err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = JournalDir()
	}
	if cfg.Probe.CachePath == "" {
		cfg.Probe.CachePath = ProbeCacheDir()
	}
	if cfg.Logging.Path == "" {
		cfg.Logging.Path = logging.DefaultLogPath()
	}
	return &cfg, nil
}

// LoggingConfig converts the logging section for logging.Init.
func (c *Config) LoggingConfig() (logging.Config, error) {
	rot := logging.RotationConfig{
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
	}
	if c.Logging.Rotation.MaxSize != "" {
		size, err := logging.ParseSize(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("logging.rotation.max_size: %w", err)
		}
		rot.MaxSize = size
	}
	return logging.Config{
		Level:      c.Logging.Level,
		Path:       c.Logging.Path,
		Rotation:   rot,
		Components: c.Logging.Components,
	}, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/maestro.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultConfigPath returns the config file config init writes.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), DefaultConfigFileName)
}

// DataDir returns $XDG_DATA_HOME/maestro.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// CacheDir returns $XDG_CACHE_HOME/maestro.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// JournalDir returns the default journal directory.
func JournalDir() string {
	return filepath.Join(DataDir(), "journal")
}

// ProbeCacheDir returns the default probe cache directory.
func ProbeCacheDir() string {
	return filepath.Join(CacheDir(), "probe")
}

// WriteDefault writes a commented default config file to path, or to
// DefaultConfigPath when path is empty. An existing file is left alone and
// reported through the returned bool.
func WriteDefault(path string) (string, bool, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	var comps strings.Builder
	for _, name := range []string{"installer", "merge", "probe", "doctor"} {
		fmt.Fprintf(&comps, "    %s: %s\n", name, DefaultComponentLevels[name])
	}

	content := fmt.Sprintf(`# maestro configuration

# Root for user-scope Claude Code settings (empty means your home directory)
home_dir: ""

# Install skills, agents, hooks and rules from this directory instead of
# the copies built into the binary
assets_dir: ""

output:
  # pretty, plain, json or yaml
  format: %s

probe:
  short_timeout: %s
  long_timeout: %s
  # How long tool and MCP probe results are reused
  cache_ttl: %s
  # Empty means $XDG_CACHE_HOME/maestro/probe
  cache_path: ""

hooks:
  # Also treat untagged hook entries from older installs as maestro's
  legacy_match: false

journal:
  enabled: true
  # Empty means $XDG_DATA_HOME/maestro/journal
  path: ""
  retention_days: %d

update:
  url: %s

logging:
  # debug, info, warn, error
  level: %s
  # Empty means $XDG_STATE_HOME/maestro/maestro.log
  path: ""
  rotation:
    max_size: %s
    max_backups: %d
    max_age: %d # days
  components:
%s`, DefaultOutputFormat, DefaultShortTimeout, DefaultLongTimeout, DefaultCacheTTL,
		DefaultRetentionDays, DefaultUpdateURL, DefaultLogLevel, DefaultLogMaxSize,
		DefaultLogMaxBackups, DefaultLogMaxAgeDays, comps.String())

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}
