package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/checker"
	"github.com/christopherosthues/bibcheck/internal/schema"
)

// setupTestDB creates an empty database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testReport(t *testing.T) *checker.Report {
	t.Helper()

	records := []bibtex.Record{
		{Type: bibtex.Article, ID: "Doe2024", Fields: map[string]string{
			"title": "T", "author": "A", "journal": "Nature", "year": "2024", "volume": "1", "pages": "1",
		}},
		{Type: bibtex.Article, ID: "Doe2024", Fields: map[string]string{"title": "T"}},
		{Type: bibtex.Misc, ID: "web"},
	}
	report, err := checker.New(schema.Default(), checker.Options{CheckAll: true}).
		Run(context.Background(), records)
	require.NoError(t, err)
	return report
}

func TestSaveReport_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	report := testReport(t)
	checkedAt := time.Unix(1700000000, 0)

	id, err := db.SaveReport("refs.bib", checkedAt, report)
	require.NoError(t, err)

	run, err := db.LoadRun(id)
	require.NoError(t, err)

	assert.Equal(t, "refs.bib", run.Source)
	assert.True(t, checkedAt.Equal(run.CheckedAt))
	assert.Equal(t, 3, run.Entries)
	assert.Equal(t, 2, run.Incorrect)
	assert.Equal(t, []string{"Doe2024"}, run.Duplicates)

	require.Len(t, run.Results, len(report.Results))
	for i, r := range report.Results {
		got := run.Results[i]
		assert.Equal(t, r.Position, got.Position)
		assert.Equal(t, string(r.Type), got.Type)
		assert.Equal(t, r.ID, got.Key)
		assert.Equal(t, r.Correct, got.Correct)
		assert.Equal(t, r.Lines, got.Lines)
	}
}

func TestSaveReport_MultipleRuns(t *testing.T) {
	db := setupTestDB(t)
	report := testReport(t)

	first, err := db.SaveReport("a.bib", time.Now(), report)
	require.NoError(t, err)
	second, err := db.SaveReport("b.bib", time.Now(), report)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	run, err := db.LoadRun(second)
	require.NoError(t, err)
	assert.Equal(t, "b.bib", run.Source)
	assert.Len(t, run.Results, len(report.Results))
}

func TestLoadRun_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.LoadRun(42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	id, err := db.SaveReport("refs.bib", time.Now(), testReport(t))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	run, err := db.LoadRun(id)
	require.NoError(t, err)
	assert.Equal(t, "refs.bib", run.Source)
}
