package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeRules(t, `
requirements:
  Misc:
    - [title, Author, year]
  article:
    - [title, author, journal, year]
abbreviatable:
  misc: [howpublished]
abbreviations:
  - {long: Conference, short: Conf.}
`)

	s, err := Load(path)
	require.NoError(t, err)

	reqs, err := s.RequirementsFor(bibtex.Misc)
	require.NoError(t, err)
	assert.Equal(t, Requirements{{"title", "author", "year"}}, reqs)

	reqs, err = s.RequirementsFor(bibtex.Article)
	require.NoError(t, err)
	assert.Equal(t, Requirements{{"title", "author", "journal", "year"}}, reqs)

	// Untouched types keep the built-in rules.
	reqs, err = s.RequirementsFor(bibtex.Book)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	assert.Equal(t, []string{"howpublished"}, s.AbbreviatableFieldsFor(bibtex.Misc))

	abbrs := s.Abbreviations()
	assert.Len(t, abbrs, len(DefaultAbbreviations)+1)
	assert.Equal(t, Abbreviation{Long: "Conference", Short: "Conf."}, abbrs[len(abbrs)-1])
}

func TestLoad_ReplaceAbbreviations(t *testing.T) {
	path := writeRules(t, `
replace_abbreviations: true
abbreviations:
  - {long: Transactions, short: Trans.}
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Abbreviation{{Long: "Transactions", Short: "Trans."}}, s.Abbreviations())
}

func TestLoad_ZeroVariantsAccepted(t *testing.T) {
	s, err := Load(writeRules(t, "requirements:\n  misc: []\n"))
	require.NoError(t, err)

	reqs, err := s.RequirementsFor(bibtex.Misc)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestLoad_EmptyFile(t *testing.T) {
	s, err := Load(writeRules(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown key", "requirement:\n  misc: []\n", "field requirement not found"},
		{"empty variant", "requirements:\n  misc:\n    - []\n", "variant 1 is empty"},
		{"incomplete abbreviation", "abbreviations:\n  - {long: Foo}\n", "long and short forms are required"},
		{"not yaml", "requirements: [unclosed\n", "parsing rules file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeRules(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRules_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Rules().Encode(&buf))

	path := writeRules(t, buf.String())
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}
