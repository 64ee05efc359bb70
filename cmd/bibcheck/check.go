package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/checker"
	"github.com/christopherosthues/bibcheck/internal/config"
	"github.com/christopherosthues/bibcheck/internal/logging"
	"github.com/christopherosthues/bibcheck/internal/schema"
	"github.com/christopherosthues/bibcheck/internal/storage"
)

var checkSQLite string

func init() {
	f := checkCmd.Flags()
	f.BoolP("mute", "m", false, "Mute output for correct entries")
	f.BoolP("errors", "e", false, "Print only errors")
	f.BoolP("all", "a", false, "Check for all possible errors")
	f.BoolP("fields", "f", false, "Check for missing fields")
	f.BoolP("abbreviations", "s", false, "Check for abbreviations")
	f.BoolP("keys", "k", false, "Check for duplicated keys")
	f.Bool("key-format", false, "Check the key formatting (not yet supported)")
	f.BoolP("names", "n", false, "Check that author and editor names are unified (not yet supported)")
	f.BoolP("editors", "c", false, "Check for correctly abbreviated editor names (not yet supported)")
	f.String("rules", "", "YAML rules file extending the built-in schema")
	f.Int("workers", 1, "Number of entries checked concurrently")
	f.StringVar(&checkSQLite, "sqlite", "", "Also store the report in this SQLite database")

	bindFlags(checkCmd, false, map[string]string{
		"mute":          config.KeyMute,
		"errors":        config.KeyErrorsOnly,
		"all":           config.KeyCheckAll,
		"fields":        config.KeyCheckFields,
		"abbreviations": config.KeyCheckAbbreviations,
		"keys":          config.KeyCheckKeys,
		"key-format":    config.KeyCheckKeyFormat,
		"names":         config.KeyCheckNames,
		"editors":       config.KeyCheckEditors,
		"rules":         config.KeyRules,
		"workers":       config.KeyWorkers,
	})

	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <file.bib>...",
	Short: "Check BibTeX files",
	Long: `Check BibTeX entries for missing fields, possible abbreviations and
duplicated keys. Use "-" to read from stdin.

When no check is selected, all checks run.

Examples:
  bibcheck check refs.bib --human          # Full text report
  bibcheck check refs.bib -f -k -e         # Field and key checks, errors only
  bibcheck check refs.bib --rules my.yaml  # Extend the built-in schema`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

// FileReport is the report for one checked file.
type FileReport struct {
	File   string          `json:"file"`
	RunID  int64           `json:"run_id,omitempty"` // Set when stored with --sqlite
	Report *checker.Report `json:"report"`
}

// CheckResponse is the response for the check command.
type CheckResponse struct {
	Status string            `json:"status"` // ok or issues
	Checks checker.Effective `json:"checks"`
	Files  []FileReport      `json:"files"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	sch, err := schema.Load(cfg.Rules)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	engine := checker.New(sch, checkOptions(cfg), checker.WithLogger(logging.Log))

	var db *storage.DB
	if checkSQLite != "" {
		db, err = storage.OpenDB(config.ExpandTilde(checkSQLite))
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		defer db.Close()
	}

	resp, code, err := checkFiles(cmd.Context(), engine, db, args)
	if err != nil {
		if db != nil {
			db.Close()
		}
		exitWithError(code, "%v", err)
	}

	if humanOutput {
		for _, fr := range resp.Files {
			if len(resp.Files) > 1 {
				fmt.Printf("==> %s <==\n", fr.File)
			}
			if err := fr.Report.WriteText(os.Stdout); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}
	} else {
		if err := outputJSON(resp); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if code != ExitSuccess {
		if db != nil {
			db.Close()
		}
		os.Exit(code)
	}
	return nil
}

// checkOptions returns the checker options for cfg.
// When no check is selected by flag, environment or config file, all run.
func checkOptions(cfg *config.Config) checker.Options {
	opts := cfg.Options()
	if !opts.AnyCheck() {
		opts.CheckAll = true
	}
	return opts
}

// checkFiles checks every path in order and builds the response.
// The returned code is the exit status: ExitSuccess or ExitIssues when all
// files were checked, otherwise the code matching the returned error.
// db may be nil.
func checkFiles(ctx context.Context, engine *checker.Engine, db *storage.DB, paths []string) (CheckResponse, int, error) {
	resp := CheckResponse{Status: "ok", Checks: engine.Config(), Files: []FileReport{}}
	logging.Log.WithField("checks", resp.Checks).Debug("effective check configuration")

	for _, path := range paths {
		records, err := bibtex.ParseFile(path)
		if err != nil {
			var parseErr *bibtex.ParseError
			if errors.As(err, &parseErr) || errors.Is(err, os.ErrNotExist) {
				return resp, ExitDataError, err
			}
			return resp, ExitError, err
		}

		report, err := engine.Run(ctx, records)
		if err != nil {
			return resp, ExitError, fmt.Errorf("checking %s: %w", path, err)
		}
		for _, n := range report.Notices {
			logging.Log.WithField("check", n.Check).Info("check requested but not yet supported")
		}

		fr := FileReport{File: path, Report: report}
		if db != nil {
			fr.RunID, err = db.SaveReport(path, time.Now(), report)
			if err != nil {
				return resp, ExitError, fmt.Errorf("storing report for %s: %w", path, err)
			}
		}
		if !report.OK() {
			resp.Status = "issues"
		}
		resp.Files = append(resp.Files, fr)
	}

	if resp.Status != "ok" {
		return resp, ExitIssues, nil
	}
	return resp, ExitSuccess, nil
}
