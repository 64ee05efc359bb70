package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/schema"
)

// record builds a record whose fields all have the value "x" unless overridden.
func record(t bibtex.EntryType, id string, fields ...string) bibtex.Record {
	rec := bibtex.Record{Type: t, ID: id, Fields: make(map[string]string, len(fields))}
	for _, f := range fields {
		rec.Fields[f] = "x"
	}
	return rec
}

func TestCheckFields(t *testing.T) {
	s := schema.Default()

	tests := []struct {
		name      string
		rec       bibtex.Record
		satisfied bool
		missing   []MissingVariant
	}{
		{
			name:      "article first variant",
			rec:       record(bibtex.Article, "a", "title", "author", "journal", "year", "volume", "pages"),
			satisfied: true,
		},
		{
			name:      "article second variant with number",
			rec:       record(bibtex.Article, "a", "title", "author", "journal", "year", "volume", "number", "pages"),
			satisfied: true,
		},
		{
			name:      "extra fields do not matter",
			rec:       record(bibtex.Book, "b", "title", "author", "publisher", "address", "year", "doi", "isbn"),
			satisfied: true,
		},
		{
			name: "article missing volume and pages",
			rec:  record(bibtex.Article, "a", "title", "author", "journal", "year"),
			missing: []MissingVariant{
				{Index: 0, Fields: []string{"volume", "pages"}},
				{Index: 1, Fields: []string{"volume", "number", "pages"}},
			},
		},
		{
			name: "techreport single variant",
			rec:  record(bibtex.TechReport, "t", "author", "title", "institution", "year"),
			missing: []MissingVariant{
				{Index: 0, Fields: []string{"month", "type", "number"}},
			},
		},
		{
			name:      "inproceedings shortest variant",
			rec:       record(bibtex.InProceedings, "i", "title", "author", "booktitle", "publisher", "pages", "year"),
			satisfied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckFields(s, tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.satisfied, got.Satisfied)
			assert.Equal(t, tt.missing, got.Missing)
		})
	}
}

func TestCheckFields_SatisfiedIffSomeVariantPresent(t *testing.T) {
	s := schema.Default()

	for _, typ := range s.Types() {
		reqs, err := s.RequirementsFor(typ)
		require.NoError(t, err)

		for i, variant := range reqs {
			got, err := CheckFields(s, record(typ, "k", variant...))
			require.NoError(t, err)
			assert.True(t, got.Satisfied, "%s variant %d should satisfy", typ, i)

			// Dropping one field fails unless another variant is a subset.
			short := variant[:len(variant)-1]
			got, err = CheckFields(s, record(typ, "k", short...))
			require.NoError(t, err)
			assert.Equal(t, anyVariantSubset(reqs, short), got.Satisfied, "%s variant %d minus one", typ, i)
		}
	}
}

func anyVariantSubset(reqs schema.Requirements, fields []string) bool {
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f] = true
	}
	for _, v := range reqs {
		ok := true
		for _, f := range v {
			if !present[f] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestCheckFields_UnsupportedType(t *testing.T) {
	_, err := CheckFields(schema.Default(), record(bibtex.Misc, "m", "title"))
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}

func TestCheckFields_NoVariants(t *testing.T) {
	rules := &schema.RulesFile{Requirements: map[string][][]string{"misc": {}}}
	s, err := rules.Apply(schema.Default())
	require.NoError(t, err)

	_, err = CheckFields(s, record(bibtex.Misc, "m", "title"))
	assert.ErrorIs(t, err, ErrNoVariants)
	assert.NotErrorIs(t, err, schema.ErrUnsupportedType)
}
