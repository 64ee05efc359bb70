package checker

import "github.com/christopherosthues/bibcheck/internal/bibtex"

// DuplicateKeys returns every citation key that occurs more than once,
// each reported once, in the order of its first repeat.
func DuplicateKeys(records []bibtex.Record) []string {
	seen := make(map[string]int, len(records))
	var dups []string
	for _, rec := range records {
		seen[rec.ID]++
		if seen[rec.ID] == 2 {
			dups = append(dups, rec.ID)
		}
	}
	return dups
}
