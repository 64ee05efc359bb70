package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError is returned when BibTeX markup cannot be parsed.
// A parse failure invalidates the whole input: no partial record set is returned.
type ParseError struct {
	Source string // File name or "<stdin>"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// monthMacros are predefined by the standard styles.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// Parse reads BibTeX markup and returns its entries in source order.
//
// Entry types, field names and macro names are case insensitive and are
// lowercased. Values joined with '#' are concatenated after expanding
// @string macros; a macro that is never defined expands to its own name.
// Runs of whitespace in field values collapse to a single space. @string,
// @preamble and @comment blocks never become records.
//
// Parse keeps no state between calls and is safe for concurrent use.
func Parse(r io.Reader, source string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	p := newParser(string(data))
	records, err := p.parse()
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return records, nil
}

// ParseFile parses the BibTeX file at path. A path of "-" reads stdin.
func ParseFile(path string) ([]Record, error) {
	if path == "-" {
		return Parse(os.Stdin, "<stdin>")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bibliography: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

type parser struct {
	s      *scanner
	macros map[string]string
}

func newParser(src string) *parser {
	macros := make(map[string]string, len(monthMacros))
	for k, v := range monthMacros {
		macros[k] = v
	}
	return &parser{s: newScanner(src), macros: macros}
}

func (p *parser) parse() ([]Record, error) {
	records := []Record{}
	for p.s.skipToAt() {
		p.s.skipSpace()
		kind := strings.ToLower(p.s.ident())
		if kind == "" {
			return nil, p.s.errorf("expected entry type after '@', found %s", p.s.describe())
		}

		opening, closing, err := p.open(kind)
		if err != nil {
			return nil, err
		}

		switch kind {
		case "comment":
			err = p.s.skipBalanced(opening, closing)
		case "preamble":
			if _, err = p.value(); err == nil {
				err = p.s.expect(closing)
			}
		case "string":
			err = p.macro(closing)
		default:
			var rec Record
			rec, err = p.entry(EntryType(kind), closing)
			if err == nil {
				records = append(records, rec)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// open consumes the delimiter after "@type" and returns it with its partner.
func (p *parser) open(kind string) (rune, rune, error) {
	p.s.skipSpace()
	switch p.s.peek() {
	case '{':
		p.s.next()
		return '{', '}', nil
	case '(':
		p.s.next()
		return '(', ')', nil
	}
	return 0, 0, p.s.errorf("expected '{' or '(' after @%s, found %s", kind, p.s.describe())
}

// macro parses the body of @string{name = value}.
func (p *parser) macro(closing rune) error {
	p.s.skipSpace()
	name := p.s.ident()
	if name == "" {
		return p.s.errorf("expected macro name, found %s", p.s.describe())
	}
	if err := p.s.expect('='); err != nil {
		return err
	}
	val, err := p.value()
	if err != nil {
		return err
	}
	p.macros[strings.ToLower(name)] = val
	return p.s.expect(closing)
}

// entry parses "key, name = value, ..." up to the closing delimiter.
func (p *parser) entry(t EntryType, closing rune) (Record, error) {
	s := p.s
	s.skipSpace()
	line, col := s.line, s.col
	key := s.key(closing)
	if key == "" {
		return Record{}, errorAt(line, col, fmt.Sprintf("missing citation key in @%s", t))
	}
	rec := Record{Type: t, ID: key, Fields: map[string]string{}}

	s.skipSpace()
	switch {
	case s.eof():
		return Record{}, errorAt(line, col, fmt.Sprintf("unterminated entry %q", key))
	case s.peek() == closing:
		s.next()
		return rec, nil
	case s.peek() != ',':
		return Record{}, s.errorf("expected ',' after key %q, found %s", key, s.describe())
	}
	s.next()

	for {
		s.skipSpace()
		if s.eof() {
			return Record{}, errorAt(line, col, fmt.Sprintf("unterminated entry %q", key))
		}
		// A trailing comma before the closing delimiter is allowed.
		if s.peek() == closing {
			s.next()
			return rec, nil
		}

		name := s.ident()
		if name == "" {
			return Record{}, s.errorf("expected field name in entry %q, found %s", key, s.describe())
		}
		if err := s.expect('='); err != nil {
			return Record{}, err
		}
		val, err := p.value()
		if err != nil {
			return Record{}, err
		}
		rec.Fields[strings.ToLower(name)] = strings.Join(strings.Fields(val), " ")

		s.skipSpace()
		switch {
		case s.eof():
			return Record{}, errorAt(line, col, fmt.Sprintf("unterminated entry %q", key))
		case s.peek() == ',':
			s.next()
		case s.peek() == closing:
			s.next()
			return rec, nil
		default:
			return Record{}, s.errorf("expected ',' or %q after field %q, found %s", closing, name, s.describe())
		}
	}
}

// value parses one or more parts joined by '#' and concatenates them.
// Whitespace is kept so macro bodies concatenate as written.
func (p *parser) value() (string, error) {
	var b strings.Builder
	for {
		p.s.skipSpace()
		part, err := p.part()
		if err != nil {
			return "", err
		}
		b.WriteString(part)

		p.s.skipSpace()
		if p.s.eof() || p.s.peek() != '#' {
			break
		}
		p.s.next()
	}
	return b.String(), nil
}

// part parses a braced or quoted literal, a number, or a macro reference.
func (p *parser) part() (string, error) {
	s := p.s
	if s.eof() {
		return "", s.errorf("expected value, found end of input")
	}
	switch s.peek() {
	case '{':
		s.next()
		return s.braced()
	case '"':
		s.next()
		return s.quoted()
	}

	word := s.ident()
	switch {
	case word == "":
		return "", s.errorf("expected value, found %s", s.describe())
	case isDigits(word):
		return word, nil
	}
	if val, ok := p.macros[strings.ToLower(word)]; ok {
		return val, nil
	}
	return word, nil
}
