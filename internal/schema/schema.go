// Package schema holds the reference data the checker validates against:
// field requirements and abbreviatable fields per entry type, and the
// abbreviation table.
package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
)

// ErrUnsupportedType is returned when an entry type has no registered field requirements.
var ErrUnsupportedType = errors.New("unsupported entry type")

// Variant is one acceptable set of fields for an entry type.
type Variant []string

// Requirements are the alternative variants for an entry type, in order.
// An entry is complete if any one variant is fully present.
type Requirements []Variant

// Abbreviation pairs a long form with its standard abbreviation.
type Abbreviation struct {
	Long  string `json:"long" yaml:"long"`
	Short string `json:"short" yaml:"short"`
}

// Schema is an immutable lookup table. Accessors return copies.
type Schema struct {
	requirements  map[bibtex.EntryType]Requirements
	abbreviatable map[bibtex.EntryType][]string
	abbreviations []Abbreviation
}

// RequirementsFor returns the field requirement variants for t.
// Returns an error wrapping ErrUnsupportedType if t has no registered schema.
// A registered type may have zero variants; callers decide how to treat that.
func (s *Schema) RequirementsFor(t bibtex.EntryType) (Requirements, error) {
	reqs, ok := s.requirements[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return cloneRequirements(reqs), nil
}

// AbbreviatableFieldsFor returns the fields of t scanned for abbreviations.
// An empty result is valid, including for types with no schema.
func (s *Schema) AbbreviatableFieldsFor(t bibtex.EntryType) []string {
	return append([]string(nil), s.abbreviatable[t]...)
}

// Abbreviations returns the abbreviation table in match order.
func (s *Schema) Abbreviations() []Abbreviation {
	return append([]Abbreviation(nil), s.abbreviations...)
}

// Types returns the entry types with registered requirements, sorted.
func (s *Schema) Types() []bibtex.EntryType {
	types := make([]bibtex.EntryType, 0, len(s.requirements))
	for t := range s.requirements {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
