// Package checker validates bibliography records against a schema and
// reports which entries are correct.
package checker

import (
	"errors"
	"fmt"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/schema"
)

// ErrNoVariants is returned when an entry type is registered without any
// field requirement variants. No entry of that type can ever be complete.
var ErrNoVariants = errors.New("no field requirement variants registered")

// MissingVariant lists the fields of one requirement variant absent from a record.
type MissingVariant struct {
	Index  int      `json:"index"` // Position of the variant in the requirements
	Fields []string `json:"fields"`
}

// FieldOutcome is the result of the field completeness check.
type FieldOutcome struct {
	Satisfied bool `json:"satisfied"`
	// Missing is only populated when no variant is satisfied.
	Missing []MissingVariant `json:"missing,omitempty"`
}

// CheckFields reports whether rec has every field of at least one
// requirement variant of its entry type.
func CheckFields(s *schema.Schema, rec bibtex.Record) (FieldOutcome, error) {
	reqs, err := s.RequirementsFor(rec.Type)
	if err != nil {
		return FieldOutcome{}, err
	}
	if len(reqs) == 0 {
		return FieldOutcome{}, fmt.Errorf("%w: %s", ErrNoVariants, rec.Type)
	}

	missing := make([]MissingVariant, 0, len(reqs))
	for i, variant := range reqs {
		var absent []string
		for _, field := range variant {
			if !rec.Has(field) {
				absent = append(absent, field)
			}
		}
		if len(absent) == 0 {
			return FieldOutcome{Satisfied: true}, nil
		}
		missing = append(missing, MissingVariant{Index: i, Fields: absent})
	}

	return FieldOutcome{Missing: missing}, nil
}
