// Package main provides the bibcheck CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/christopherosthues/bibcheck/internal/config"
	"github.com/christopherosthues/bibcheck/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configFile is an explicit config file path (--config)
var configFile string

// settings holds flags, environment and config file values
var settings = config.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibcheck",
	Short: "Lint BibTeX databases",
	Long: `bibcheck checks BibTeX entries for missing required fields, terms that have a
standard abbreviation, and duplicated citation keys.

All commands output JSON by default; use --human for the text report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./bibcheck.yaml or ~/.config/bibcheck/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	bindFlags(rootCmd, true, map[string]string{"log-level": config.KeyLogLevel})
	rootCmd.Version = Version
}

// mustLoadConfig merges defaults, config file, environment and flags.
func mustLoadConfig() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	cfg, err := config.Load(settings, configFile, cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if cfg.Source != "" {
		logging.Log.WithField("file", cfg.Source).Debug("using config file")
	}
	return cfg
}

// bindFlags binds flags of cmd to viper keys (flag name -> key).
// Binding only fails for an unknown flag, which is a programming error.
func bindFlags(cmd *cobra.Command, persistent bool, keys map[string]string) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for name, key := range keys {
		if err := settings.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}
