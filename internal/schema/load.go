package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
)

// RulesFile is the YAML layout of a rules file. It is also what the rules
// command prints for the effective schema.
//
//	requirements:
//	  misc:
//	    - [title, author, year]
//	abbreviatable:
//	  misc: [howpublished]
//	abbreviations:
//	  - {long: Conference, short: Conf.}
type RulesFile struct {
	// Requirements replaces the variants of each listed type.
	Requirements map[string][][]string `yaml:"requirements,omitempty"`
	// Abbreviatable replaces the abbreviatable fields of each listed type.
	Abbreviatable map[string][]string `yaml:"abbreviatable,omitempty"`
	// Abbreviations are appended to the table, or replace it when
	// ReplaceAbbreviations is set.
	Abbreviations        []Abbreviation `yaml:"abbreviations,omitempty"`
	ReplaceAbbreviations bool           `yaml:"replace_abbreviations,omitempty"`
}

// Load reads a rules file and applies it on top of the built-in schema.
// An empty path returns the built-in schema.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	rules, err := decodeRules(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	return rules.Apply(Default())
}

func decodeRules(data []byte) (*RulesFile, error) {
	var rules RulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil {
		if errors.Is(err, io.EOF) {
			return &rules, nil // Empty file changes nothing
		}
		return nil, err
	}
	return &rules, nil
}

// Apply returns a new schema with the rules applied on top of base.
// A type may be registered with zero variants; that is reported when an
// entry of that type is checked, not here.
func (r *RulesFile) Apply(base *Schema) (*Schema, error) {
	s := &Schema{
		requirements:  make(map[bibtex.EntryType]Requirements, len(base.requirements)),
		abbreviatable: make(map[bibtex.EntryType][]string, len(base.abbreviatable)),
		abbreviations: append([]Abbreviation(nil), base.abbreviations...),
	}
	for t, reqs := range base.requirements {
		s.requirements[t] = cloneRequirements(reqs)
	}
	for t, fields := range base.abbreviatable {
		s.abbreviatable[t] = append([]string(nil), fields...)
	}

	for name, variants := range r.Requirements {
		t, err := parseType(name)
		if err != nil {
			return nil, err
		}
		reqs := make(Requirements, 0, len(variants))
		for i, v := range variants {
			if len(v) == 0 {
				return nil, fmt.Errorf("requirements for %s: variant %d is empty", t, i+1)
			}
			reqs = append(reqs, Variant(normalizeFields(v)))
		}
		s.requirements[t] = reqs
	}

	for name, fields := range r.Abbreviatable {
		t, err := parseType(name)
		if err != nil {
			return nil, err
		}
		s.abbreviatable[t] = normalizeFields(fields)
	}

	if r.ReplaceAbbreviations {
		s.abbreviations = nil
	}
	for i, a := range r.Abbreviations {
		if a.Long == "" || a.Short == "" {
			return nil, fmt.Errorf("abbreviation %d: long and short forms are required", i+1)
		}
		s.abbreviations = append(s.abbreviations, a)
	}

	return s, nil
}

// Rules returns the schema as a rules file.
func (s *Schema) Rules() RulesFile {
	rules := RulesFile{
		Requirements:         make(map[string][][]string, len(s.requirements)),
		Abbreviatable:        make(map[string][]string, len(s.abbreviatable)),
		Abbreviations:        s.Abbreviations(),
		ReplaceAbbreviations: true,
	}
	for t, reqs := range s.requirements {
		variants := make([][]string, len(reqs))
		for i, v := range reqs {
			variants[i] = append([]string(nil), v...)
		}
		rules.Requirements[string(t)] = variants
	}
	for t, fields := range s.abbreviatable {
		rules.Abbreviatable[string(t)] = append([]string(nil), fields...)
	}
	return rules
}

// Encode writes the rules as YAML.
func (r RulesFile) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(r)
}

func parseType(name string) (bibtex.EntryType, error) {
	t := bibtex.EntryType(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return "", fmt.Errorf("empty entry type name")
	}
	return t, nil
}

func normalizeFields(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(strings.TrimSpace(f)))
	}
	return out
}
