package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/assets"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/config"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/journal"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/output"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/probe"
)

var logger = logging.Get("cli")

var (
	cfgFile string
	// cfg is the effective configuration, loaded before every command.
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "maestro",
		Short: "Install maestro workflows into Claude Code projects",
		Long: `Maestro provisions skills, agents, hooks, rules and permissions into a
project's Claude Code configuration, and can update or remove them again
without touching your own settings.

Examples:
  maestro install                 # Interactive install into the current directory
  maestro install -y --preset rust
  maestro install --dry-run       # Show what would change
  maestro update                  # Refresh managed files to this version
  maestro uninstall --purge       # Remove everything, runtime data included
  maestro status -C ~/src/app     # Inspect another project
  maestro doctor --verify         # Check the host and the installation`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Close()
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/maestro/config.yaml)")
	rootCmd.PersistentFlags().StringP("project", "C", "", "project directory (default: current directory)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: pretty, plain, json, yaml")
	rootCmd.PersistentFlags().String("assets", "", "install assets from this directory instead of the built-in copies")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the tool probe cache")

	// Bind flags to viper
	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("assets_dir", rootCmd.PersistentFlags().Lookup("assets"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
}

// initConfig points viper at the config file and environment.
func initConfig() {
	config.Setup(viper.GetViper(), cfgFile)
}

// setup loads the configuration and starts logging. A logging failure is
// reported but does not stop the command.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	if viper.GetBool("no_color") || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	lc, err := cfg.LoggingConfig()
	if err == nil {
		if getVerbose() {
			lc.ConsoleLevel = "debug"
		}
		err = logging.Init(lc)
	}
	if err != nil {
		printVerbose("logging disabled: %v", err)
	}
	logger.Debug("command started", "command", cmd.CommandPath(), "config", viper.ConfigFileUsed())
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...any) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...any) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// projectDir returns the absolute project directory.
func projectDir() (string, error) {
	dir := viper.GetString("project")
	if dir == "" {
		dir = "."
	}
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", abs)
	}
	return abs, nil
}

// assetSource returns the configured asset tree, the embedded one unless
// assets_dir is set.
func assetSource() (fs.FS, error) {
	if cfg.AssetsDir != "" {
		printVerbose("Using assets from %s", cfg.AssetsDir)
	}
	return assets.Open(cfg.AssetsDir)
}

// newProber builds a prober with the configured timeouts. The returned
// func closes the probe cache.
func newProber() (*probe.Prober, func()) {
	opts := probe.Options{
		ShortTimeout: cfg.Probe.ShortTimeout,
		LongTimeout:  cfg.Probe.LongTimeout,
	}
	closer := func() {}
	if !viper.GetBool("no_cache") && cfg.Probe.CacheTTL > 0 {
		cache, err := probe.OpenCache(cfg.Probe.CachePath, cfg.Probe.CacheTTL)
		if err != nil {
			logger.Warn("probe cache unavailable", "err", err)
			printVerbose("probe cache unavailable: %v", err)
		} else {
			opts.Cache = cache
			closer = func() { _ = cache.Close() }
		}
	}
	return probe.New(opts), closer
}

// recordJournal appends a journal entry. Failures are only logged.
func recordJournal(e journal.Entry) {
	if !cfg.Journal.Enabled {
		return
	}
	j, err := journal.New(cfg.Journal.Path)
	if err == nil {
		var saved *journal.Entry
		if saved, err = j.Record(e); err == nil {
			printVerbose("Journal entry %s", saved.ID)
			return
		}
	}
	logger.Warn("could not write journal entry", "err", err)
	printVerbose("could not write journal entry: %v", err)
}

// render writes r to stdout in the configured format. Quiet mode drops
// successful pretty reports.
func render(r *output.Report) error {
	format := cfg.Output.Format
	if getQuiet() && format == config.DefaultOutputFormat && r.Success {
		return nil
	}
	f, err := output.Get(format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

// commandContext returns the command's context, or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
