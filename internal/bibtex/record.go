// Package bibtex defines the bibliographic records the checker consumes and
// builds them from BibTeX markup.
package bibtex

// EntryType is the lowercased BibTeX entry type (the word after '@').
type EntryType string

// Standard BibTeX entry types.
const (
	Article       EntryType = "article"
	InProceedings EntryType = "inproceedings"
	Book          EntryType = "book"
	Proceedings   EntryType = "proceedings"
	PhdThesis     EntryType = "phdthesis"
	TechReport    EntryType = "techreport"
	Booklet       EntryType = "booklet"
	Conference    EntryType = "conference"
	InBook        EntryType = "inbook"
	InCollection  EntryType = "incollection"
	Manual        EntryType = "manual"
	MastersThesis EntryType = "mastersthesis"
	Misc          EntryType = "misc"
	Unpublished   EntryType = "unpublished"
)

// StandardTypes lists every entry type defined by classic BibTeX.
var StandardTypes = []EntryType{
	Article, Book, Booklet, Conference, InBook, InCollection, InProceedings,
	Manual, MastersThesis, Misc, PhdThesis, Proceedings, TechReport, Unpublished,
}

// IsStandard reports whether t is one of the classic BibTeX entry types.
func (t EntryType) IsStandard() bool {
	for _, s := range StandardTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Record represents one entry of a bibliography database.
type Record struct {
	Type   EntryType         `json:"type"`
	ID     string            `json:"id"`     // Citation key
	Fields map[string]string `json:"fields"` // Field name -> value
}

// Has reports whether the record carries the named field.
func (r Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}
