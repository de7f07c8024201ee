package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"go-scout-export/internal/config"
)

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	configFile string
	dataDir    string
	root       string
	strategy   string
	logLevel   string
}

var globals globalFlags

var rootCmd = &cobra.Command{
	Use:   "scout-export",
	Short: "Export scouting records as spreadsheets or JSON",
	Long: `Scout Export fetches the scouts of a set of teams, groups them by template
and publishes one CSV file per template, or a single consolidated JSON document.

Configuration is read from a YAML file; SCOUTEXPORT_* environment variables and
command line flags override it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags(), &globals)
}

func addGlobalFlags(fs *flag.FlagSet, g *globalFlags) {
	fs.StringVarP(&g.configFile, "config", "c", "scout-export.yaml", "config file path")
	fs.StringVar(&g.dataDir, "data-dir", "", "override the scouting data directory")
	fs.StringVar(&g.root, "root", "", "override the storage root (also moves the scratch area)")
	fs.StringVar(&g.strategy, "strategy", "", "override the storage strategy (auto, indexed, direct)")
	fs.StringVar(&g.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(g globalFlags) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(g.configFile)
	if err != nil {
		return nil, err
	}

	if g.dataDir != "" {
		cfg.Source.DataDir = g.dataDir
	}
	if g.root != "" {
		cfg.Storage.Root = g.root
		cfg.Storage.ScratchDir = filepath.Join(g.root, ".scratch")
	}
	if g.strategy != "" {
		cfg.Storage.Strategy = g.strategy
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}
