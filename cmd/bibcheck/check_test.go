package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherosthues/bibcheck/internal/checker"
	"github.com/christopherosthues/bibcheck/internal/config"
	"github.com/christopherosthues/bibcheck/internal/schema"
	"github.com/christopherosthues/bibcheck/internal/storage"
)

const correctBib = `
@book{knuth1997,
  title     = {The Art of Computer Programming},
  author    = {Knuth, Donald E.},
  publisher = {Addison-Wesley},
  address   = {Reading, MA},
  year      = 1997
}
`

const concatenatedBib = `
@string{proc = "Proc. of the "}

@inproceedings{lee2020,
  title     = {Fast Stuff},
  author    = {Lee, Ann},
  booktitle = proc # {International Symposium on X},
  publisher = {ACM},
  pages     = {1--10},
  year      = 2020
}
`

const duplicateBib = `
@book{same, title = {A}, author = {B}, publisher = {C}, address = {D}, year = 2000}
@book{same, title = {E}, author = {F}, publisher = {G}, address = {H}, year = 2001}
`

func writeBib(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheckOptions(t *testing.T) {
	t.Run("no check selected runs all", func(t *testing.T) {
		eff := checkOptions(&config.Config{}).Resolve()
		assert.True(t, eff.Fields)
		assert.True(t, eff.Abbreviations)
		assert.True(t, eff.Keys)
		assert.True(t, eff.KeyFormat)
		assert.True(t, eff.Names)
		assert.True(t, eff.Editors)
	})

	t.Run("selected checks are kept", func(t *testing.T) {
		eff := checkOptions(&config.Config{CheckKeys: true, Mute: true}).Resolve()
		assert.True(t, eff.Keys)
		assert.True(t, eff.Mute)
		assert.False(t, eff.Fields)
		assert.False(t, eff.Abbreviations)
	})
}

func TestCheckFiles(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		files    []string // Contents; "" means a path that does not exist
		wantCode int
		wantErr  bool
		check    func(t *testing.T, resp CheckResponse)
	}{
		{
			name:     "correct file",
			files:    []string{correctBib},
			wantCode: ExitSuccess,
			check: func(t *testing.T, resp CheckResponse) {
				assert.Equal(t, "ok", resp.Status)
				require.Len(t, resp.Files, 1)
				assert.True(t, resp.Files[0].Report.OK())
			},
		},
		{
			name:     "concatenated booktitle is abbreviated",
			files:    []string{concatenatedBib},
			wantCode: ExitIssues,
			check: func(t *testing.T, resp CheckResponse) {
				assert.Equal(t, "issues", resp.Status)
				results := resp.Files[0].Report.Results
				require.Len(t, results, 1)
				require.Len(t, results[0].Suggestions, 1)
				assert.Equal(t, "booktitle", results[0].Suggestions[0].Field)
				assert.Equal(t, []schema.Abbreviation{
					{Long: "Symposium", Short: "Symp."},
					{Long: "International", Short: "Int'l"},
				}, results[0].Suggestions[0].Suggestions)
			},
		},
		{
			name:     "duplicate keys",
			cfg:      config.Config{CheckKeys: true},
			files:    []string{duplicateBib},
			wantCode: ExitIssues,
			check: func(t *testing.T, resp CheckResponse) {
				assert.Equal(t, []string{"same"}, resp.Files[0].Report.Duplicates)
				assert.True(t, resp.Checks.Keys)
				assert.False(t, resp.Checks.Fields)
			},
		},
		{
			name:     "issues in any file",
			files:    []string{correctBib, concatenatedBib},
			wantCode: ExitIssues,
			check: func(t *testing.T, resp CheckResponse) {
				require.Len(t, resp.Files, 2)
				assert.True(t, resp.Files[0].Report.OK())
				assert.False(t, resp.Files[1].Report.OK())
			},
		},
		{
			name:     "malformed file",
			files:    []string{"@book{broken, title = {open"},
			wantCode: ExitDataError,
			wantErr:  true,
		},
		{
			name:     "missing file",
			files:    []string{""},
			wantCode: ExitDataError,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			for i, content := range tt.files {
				if content == "" {
					paths = append(paths, filepath.Join(t.TempDir(), "missing.bib"))
					continue
				}
				paths = append(paths, writeBib(t, string(rune('a'+i))+".bib", content))
			}

			engine := checker.New(schema.Default(), checkOptions(&tt.cfg))
			resp, code, err := checkFiles(context.Background(), engine, nil, paths)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, resp)
		})
	}
}

func TestCheckFiles_StoresReports(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer db.Close()

	engine := checker.New(schema.Default(), checkOptions(&config.Config{}))
	resp, code, err := checkFiles(context.Background(), engine, db, []string{writeBib(t, "refs.bib", concatenatedBib)})
	require.NoError(t, err)
	assert.Equal(t, ExitIssues, code)

	runID := resp.Files[0].RunID
	require.NotZero(t, runID)

	run, err := db.LoadRun(runID)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Incorrect)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "lee2020", run.Results[0].Key)
}
