package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage maestro configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/maestro/config.yaml
  2. ~/.config/maestro/config.yaml

Environment variables can override config file settings using the MAESTRO_ prefix:
  MAESTRO_OUTPUT_FORMAT=json
  MAESTRO_HOOKS_LEGACY_MATCH=true
  MAESTRO_JOURNAL_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration from all sources as YAML.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration and data paths",
	Long:  `Display where maestro reads its configuration and keeps its data.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("# Config file: %s\n", configFile)
	} else {
		fmt.Println("# Config file: (using defaults, no file found)")
	}
	if env := envOverrides(os.Environ()); len(env) > 0 {
		fmt.Println("# Environment overrides:")
		for _, e := range env {
			fmt.Printf("#   %s\n", e)
		}
	}
	fmt.Println()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// envOverrides returns the MAESTRO_ variables in environ, sorted.
func envOverrides(environ []string) []string {
	prefix := strings.ToUpper(config.AppName) + "_"
	var out []string
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, args []string) error {
	var target string
	if len(args) == 1 {
		target = args[0]
	}
	path, created, err := config.WriteDefault(target)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo("Config file already exists: %s", path)
		return nil
	}
	printInfo("Created default config file: %s", path)
	return nil
}

// runConfigPath prints every path maestro uses.
func runConfigPath(_ *cobra.Command, _ []string) error {
	used := viper.ConfigFileUsed()
	if used == "" {
		used = "(none)"
	}
	fmt.Printf("config file:  %s\n", used)
	fmt.Printf("default:      %s\n", config.DefaultConfigPath())
	fmt.Printf("journal:      %s\n", cfg.Journal.Path)
	fmt.Printf("probe cache:  %s\n", cfg.Probe.CachePath)
	fmt.Printf("log file:     %s\n", cfg.Logging.Path)
	return nil
}
