package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christopherosthues/bibcheck/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration check would use, after merging defaults, the config
file, .env, and BIBCHECK_* environment variables.

Keys:
  mute, errors_only, check_all, check_fields, check_abbreviations, check_keys,
  check_key_format, check_names, check_editors, rules, workers, log_level`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	*config.Config
	GlobalPath string `json:"global_path"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	if humanOutput {
		fmt.Printf("source:              %s\n", valueOrNone(cfg.Source))
		fmt.Printf("global config:       %s\n", config.GlobalConfigPath())
		fmt.Printf("mute:                %t\n", cfg.Mute)
		fmt.Printf("errors_only:         %t\n", cfg.ErrorsOnly)
		fmt.Printf("check_all:           %t\n", cfg.CheckAll)
		fmt.Printf("check_fields:        %t\n", cfg.CheckFields)
		fmt.Printf("check_abbreviations: %t\n", cfg.CheckAbbreviations)
		fmt.Printf("check_keys:          %t\n", cfg.CheckKeys)
		fmt.Printf("check_key_format:    %t\n", cfg.CheckKeyFormat)
		fmt.Printf("check_names:         %t\n", cfg.CheckNames)
		fmt.Printf("check_editors:       %t\n", cfg.CheckEditors)
		fmt.Printf("rules:               %s\n", valueOrNone(cfg.Rules))
		fmt.Printf("workers:             %d\n", cfg.Workers)
		fmt.Printf("log_level:           %s\n", cfg.LogLevel)
		return nil
	}

	return outputJSON(ConfigResponse{Config: cfg, GlobalPath: config.GlobalConfigPath()})
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
