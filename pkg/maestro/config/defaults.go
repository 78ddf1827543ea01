// Package config loads maestro's user configuration with viper: a YAML
// file under the XDG config directory, MAESTRO_* environment variables and
// bound command-line flags, in increasing order of precedence.
package config

import "time"

// AppName names the XDG subdirectories and the env prefix.
const AppName = "maestro"

// Defaults for configuration keys.
const (
	DefaultOutputFormat   = "pretty"
	DefaultShortTimeout   = 10 * time.Second
	DefaultLongTimeout    = 2 * time.Minute
	DefaultCacheTTL       = time.Hour
	DefaultRetentionDays  = 90
	DefaultUpdateURL      = "https://api.github.com/repos/ZipperCode/my-claude-code-plugin/releases/latest"
	DefaultLogLevel       = "info"
	DefaultLogMaxSize     = "5MB"
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAgeDays  = 30
	DefaultConfigFileName = "config.yaml"
)

// DefaultComponentLevels are the per-component log levels written by
// config init.
var DefaultComponentLevels = map[string]string{
	"installer": "info",
	"merge":     "info",
	"probe":     "info",
	"doctor":    "info",
}
