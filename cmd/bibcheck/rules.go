package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/schema"
)

var rulesFile string

func init() {
	rulesCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file extending the built-in schema")
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the effective field requirements and abbreviations",
	Long: `Show the field requirements, abbreviatable fields and abbreviation table
used by check. With --human the rules are printed as YAML and can be used as
a starting point for a rules file.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

// RuleSet is the JSON response for the rules command.
type RuleSet struct {
	Types         []TypeRules           `json:"types"`
	Abbreviations []schema.Abbreviation `json:"abbreviations"`
	// Unsupported lists standard entry types that fail the field check.
	Unsupported []string `json:"unsupported"`
}

// TypeRules describes the rules for one entry type.
type TypeRules struct {
	Type          string     `json:"type"`
	Standard      bool       `json:"standard"` // False for types only a rules file defines
	Variants      [][]string `json:"variants"`
	Abbreviatable []string   `json:"abbreviatable"`
}

func runRules(cmd *cobra.Command, args []string) error {
	path := rulesFile
	if path == "" {
		path = mustLoadConfig().Rules
	}

	sch, err := schema.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		return sch.Rules().Encode(os.Stdout)
	}

	set, err := ruleSet(sch)
	if err != nil {
		return err
	}
	return outputJSON(set)
}

// ruleSet describes every type the schema knows about.
func ruleSet(sch *schema.Schema) (RuleSet, error) {
	set := RuleSet{
		Types:         []TypeRules{},
		Abbreviations: sch.Abbreviations(),
		Unsupported:   unsupportedStandardTypes(sch),
	}
	for _, t := range sch.Types() {
		reqs, err := sch.RequirementsFor(t)
		if err != nil {
			return RuleSet{}, fmt.Errorf("looking up %s: %w", t, err)
		}
		variants := make([][]string, len(reqs))
		for i, v := range reqs {
			variants[i] = []string(v)
		}
		abbreviatable := sch.AbbreviatableFieldsFor(t)
		if abbreviatable == nil {
			abbreviatable = []string{}
		}
		set.Types = append(set.Types, TypeRules{
			Type:          string(t),
			Standard:      t.IsStandard(),
			Variants:      variants,
			Abbreviatable: abbreviatable,
		})
	}
	return set, nil
}

// unsupportedStandardTypes lists standard entry types without field requirements.
func unsupportedStandardTypes(sch *schema.Schema) []string {
	out := []string{}
	for _, t := range bibtex.StandardTypes {
		if _, err := sch.RequirementsFor(t); err != nil {
			out = append(out, string(t))
		}
	}
	return out
}
