package schema

import "github.com/christopherosthues/bibcheck/internal/bibtex"

var defaultRequirements = map[bibtex.EntryType]Requirements{
	bibtex.Article: {
		{"title", "author", "journal", "year", "volume", "pages"},
		{"title", "author", "journal", "year", "volume", "number", "pages"},
	},
	bibtex.InProceedings: {
		{"title", "author", "editor", "booktitle", "publisher", "address", "pages", "year"},
		{"title", "author", "booktitle", "publisher", "pages", "year"},
		{"title", "author", "editor", "booktitle", "publisher", "address", "pages", "year", "series", "volume"},
		{"title", "author", "booktitle", "publisher", "pages", "year", "series", "volume"},
	},
	bibtex.Book: {
		{"title", "author", "publisher", "address", "year"},
		{"title", "author", "publisher", "address", "year", "series", "volume"},
	},
	bibtex.Proceedings: {
		{"editor", "title", "publisher", "address", "year"},
		{"editor", "title", "publisher", "address", "year", "series", "volume"},
	},
	bibtex.PhdThesis: {
		{"author", "title", "school", "year", "type"},
		{"author", "title", "school", "year", "month", "type"},
	},
	bibtex.TechReport: {
		{"author", "title", "institution", "year", "month", "type", "number"},
	},
}

var defaultAbbreviatable = map[bibtex.EntryType][]string{
	bibtex.Article:       {"journal"},
	bibtex.InProceedings: {"booktitle"},
	bibtex.Book:          {},
	bibtex.Proceedings:   {"title"},
	bibtex.PhdThesis:     {},
	bibtex.TechReport:    {},
}

// DefaultAbbreviations is the built-in abbreviation table.
var DefaultAbbreviations = []Abbreviation{
	{Long: "Proceedings", Short: "Proc."},
	{Long: "Symposium", Short: "Symp."},
	{Long: "International", Short: "Int'l"},
	{Long: "Journal", Short: "J."},
	{Long: "Distributed", Short: "Distr."},
}

// Default returns the built-in schema.
func Default() *Schema {
	s := &Schema{
		requirements:  make(map[bibtex.EntryType]Requirements, len(defaultRequirements)),
		abbreviatable: make(map[bibtex.EntryType][]string, len(defaultAbbreviatable)),
		abbreviations: append([]Abbreviation(nil), DefaultAbbreviations...),
	}
	for t, reqs := range defaultRequirements {
		s.requirements[t] = cloneRequirements(reqs)
	}
	for t, fields := range defaultAbbreviatable {
		s.abbreviatable[t] = append([]string(nil), fields...)
	}
	return s
}

func cloneRequirements(reqs Requirements) Requirements {
	out := make(Requirements, len(reqs))
	for i, v := range reqs {
		out[i] = append(Variant(nil), v...)
	}
	return out
}
