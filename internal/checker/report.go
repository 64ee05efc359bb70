package checker

import (
	"fmt"
	"io"
	"strings"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
)

// Problem classifies why a record could not be checked against its schema.
type Problem string

const (
	ProblemUnsupportedType Problem = "unsupported_type"
	ProblemConfigError     Problem = "config_error"
)

// NoticeUnimplemented marks a requested check that has no behavior.
const NoticeUnimplemented = "unimplemented"

// Message texts. These form the human report and stay stable across releases.
const (
	msgHeader       = "Checking entry for '%s' with key '%s'"
	msgDuplicate    = "Found duplicated key '%s'"
	msgMissing      = "Missing fields for '%s' with key '%s' detected."
	msgMissingList  = "Missing fields are: %s"
	msgOr           = "OR"
	msgAbbreviation = "Possible abbreviation found for field '%s': %s"
	msgSuggestion   = "%s can be abbreviated with %s"
	msgUnsupported  = "Unsupported entry type '%s' for key '%s'"
	msgNoVariants   = "Configuration error: no field requirement variants registered for '%s'"
	msgCorrect      = "BibTex entry seems to be correct"
)

// Result is the outcome of checking one record.
type Result struct {
	Position    int                `json:"position"` // Index in the input
	Type        bibtex.EntryType   `json:"type"`
	ID          string             `json:"id"`
	Correct     bool               `json:"correct"`
	Problem     Problem            `json:"problem,omitempty"`
	Fields      *FieldOutcome      `json:"fields,omitempty"` // nil when the field check was not run
	Suggestions []FieldSuggestions `json:"suggestions,omitempty"`
	Lines       []string           `json:"lines"`
}

// Notice reports something about a requested check other than its findings.
type Notice struct {
	Check  Check  `json:"check"`
	Status string `json:"status"`
}

// Summary counts all checked records, including ones left out of Results.
type Summary struct {
	Entries    int `json:"entries"`
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Duplicates int `json:"duplicates"`
}

// Report is the outcome of one Run.
type Report struct {
	Duplicates []string `json:"duplicates"`
	// Results holds the records selected for output, in input order.
	Results []Result `json:"results"`
	Notices []Notice `json:"notices,omitempty"`
	Summary Summary  `json:"summary"`
}

// OK reports whether every record is correct and no key is duplicated.
func (r *Report) OK() bool {
	return r.Summary.Incorrect == 0 && len(r.Duplicates) == 0
}

// Lines renders the human-readable report.
func (r *Report) Lines() []string {
	var lines []string
	for _, key := range r.Duplicates {
		lines = append(lines, fmt.Sprintf(msgDuplicate, key))
	}
	if len(r.Duplicates) > 0 {
		lines = append(lines, "")
	}
	for _, res := range r.Results {
		lines = append(lines, fmt.Sprintf(msgHeader, res.Type, res.ID))
		lines = append(lines, res.Lines...)
		lines = append(lines, "")
	}
	return lines
}

// WriteText writes the human-readable report to w.
func (r *Report) WriteText(w io.Writer) error {
	for _, line := range r.Lines() {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func missingLines(rec bibtex.Record, missing []MissingVariant) []string {
	lines := []string{fmt.Sprintf(msgMissing, rec.Type, rec.ID)}
	for i, m := range missing {
		if i > 0 {
			lines = append(lines, msgOr)
		}
		lines = append(lines, fmt.Sprintf(msgMissingList, strings.Join(m.Fields, ", ")))
	}
	return lines
}

func suggestionLines(suggestions []FieldSuggestions) []string {
	lines := make([]string, 0, len(suggestions))
	for _, fs := range suggestions {
		parts := make([]string, len(fs.Suggestions))
		for i, a := range fs.Suggestions {
			parts[i] = fmt.Sprintf(msgSuggestion, a.Long, a.Short)
		}
		lines = append(lines, fmt.Sprintf(msgAbbreviation, fs.Field, strings.Join(parts, ", ")))
	}
	return lines
}
