package checker

import (
	"strings"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/schema"
)

// FieldSuggestions holds the abbreviations that apply to one field value.
type FieldSuggestions struct {
	Field       string                `json:"field"`
	Suggestions []schema.Abbreviation `json:"suggestions"`
}

// SuggestAbbreviations scans the abbreviatable fields of rec for long forms
// that have a standard abbreviation. Each rule is reported at most once per
// field. Abbreviatable fields the record does not have are skipped.
func SuggestAbbreviations(s *schema.Schema, rec bibtex.Record) []FieldSuggestions {
	rules := s.Abbreviations()

	var out []FieldSuggestions
	for _, field := range s.AbbreviatableFieldsFor(rec.Type) {
		value, ok := rec.Fields[field]
		if !ok {
			continue
		}

		var found []schema.Abbreviation
		for _, rule := range rules {
			if strings.Contains(value, rule.Long) {
				found = append(found, rule)
			}
		}
		if len(found) > 0 {
			out = append(out, FieldSuggestions{Field: field, Suggestions: found})
		}
	}
	return out
}
