// Package storage persists check reports in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/christopherosthues/bibcheck/internal/checker"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Run is a stored check run.
type Run struct {
	ID         int64
	Source     string
	CheckedAt  time.Time
	Entries    int
	Incorrect  int
	Duplicates []string
	Results    []Result
}

// Result is a stored per-entry result.
type Result struct {
	Position int
	Type     string
	Key      string
	Correct  bool
	Lines    []string
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			checked_at INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			incorrect INTEGER NOT NULL
		);

		-- Only entries selected for output are stored
		CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			entry_type TEXT NOT NULL,
			key TEXT NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		CREATE TABLE IF NOT EXISTS diagnostics (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			line TEXT NOT NULL,
			PRIMARY KEY (run_id, position, seq)
		);

		CREATE TABLE IF NOT EXISTS duplicates (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			key TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_results_key ON results(key);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveReport stores a report in one transaction and returns the run ID.
func (d *DB) SaveReport(source string, checkedAt time.Time, report *checker.Report) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (source, checked_at, entries, incorrect) VALUES (?, ?, ?, ?)`,
		source, checkedAt.Unix(), report.Summary.Entries, report.Summary.Incorrect,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, key := range report.Duplicates {
		if _, err := tx.Exec(`INSERT INTO duplicates (run_id, seq, key) VALUES (?, ?, ?)`, runID, i, key); err != nil {
			return 0, fmt.Errorf("inserting duplicate %s: %w", key, err)
		}
	}

	resultStmt, err := tx.Prepare(`
		INSERT INTO results (run_id, position, entry_type, key, correct)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing results insert: %w", err)
	}
	defer resultStmt.Close()

	lineStmt, err := tx.Prepare(`
		INSERT INTO diagnostics (run_id, position, seq, line)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing diagnostics insert: %w", err)
	}
	defer lineStmt.Close()

	for _, r := range report.Results {
		if _, err := resultStmt.Exec(runID, r.Position, string(r.Type), r.ID, boolToInt(r.Correct)); err != nil {
			return 0, fmt.Errorf("inserting result %s: %w", r.ID, err)
		}
		for seq, line := range r.Lines {
			if _, err := lineStmt.Exec(runID, r.Position, seq, line); err != nil {
				return 0, fmt.Errorf("inserting diagnostic for %s: %w", r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing report: %w", err)
	}
	return runID, nil
}

// LoadRun reads a stored run back. Returns sql.ErrNoRows if it doesn't exist.
func (d *DB) LoadRun(id int64) (*Run, error) {
	run := &Run{ID: id}
	var checkedAt int64
	err := d.db.QueryRow(
		`SELECT source, checked_at, entries, incorrect FROM runs WHERE id = ?`, id,
	).Scan(&run.Source, &checkedAt, &run.Entries, &run.Incorrect)
	if err != nil {
		return nil, err
	}
	run.CheckedAt = time.Unix(checkedAt, 0)

	dupRows, err := d.db.Query(`SELECT key FROM duplicates WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying duplicates: %w", err)
	}
	defer dupRows.Close()
	for dupRows.Next() {
		var key string
		if err := dupRows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning duplicate: %w", err)
		}
		run.Duplicates = append(run.Duplicates, key)
	}
	if err := dupRows.Err(); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT position, entry_type, key, correct FROM results
		WHERE run_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	index := make(map[int]int)
	for rows.Next() {
		var r Result
		var correct int
		if err := rows.Scan(&r.Position, &r.Type, &r.Key, &correct); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Correct = correct != 0
		index[r.Position] = len(run.Results)
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := d.db.Query(`
		SELECT position, line FROM diagnostics
		WHERE run_id = ? ORDER BY position, seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var pos int
		var line string
		if err := lineRows.Scan(&pos, &line); err != nil {
			return nil, fmt.Errorf("scanning diagnostic: %w", err)
		}
		if i, ok := index[pos]; ok {
			run.Results[i].Lines = append(run.Results[i].Lines, line)
		}
	}
	return run, lineRows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
