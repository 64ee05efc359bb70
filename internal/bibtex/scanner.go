package bibtex

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError reports malformed markup at a 1-based line and column.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// scanner walks the input rune by rune and tracks the current position.
// All state lives in the scanner, so separate parses never interfere.
type scanner struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: []rune(src), line: 1, col: 1}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

// peek returns the next rune without consuming it, or 0 at end of input.
func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) next() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.next()
	}
}

// skipToAt consumes everything up to and including the next '@'.
// Text between entries is an implicit comment.
func (s *scanner) skipToAt() bool {
	for !s.eof() {
		if s.next() == '@' {
			return true
		}
	}
	return false
}

// ident reads an entry type, field name, or macro name.
func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() && isIdentRune(s.peek()) {
		s.next()
	}
	return string(s.src[start:s.pos])
}

// key reads a citation key, which ends at a comma, whitespace, or the
// entry's closing delimiter.
func (s *scanner) key(closing rune) string {
	start := s.pos
	for !s.eof() {
		r := s.peek()
		if r == ',' || r == closing || unicode.IsSpace(r) {
			break
		}
		s.next()
	}
	return string(s.src[start:s.pos])
}

// expect skips whitespace and consumes r.
func (s *scanner) expect(r rune) error {
	s.skipSpace()
	if s.peek() != r || s.eof() {
		return s.errorf("expected %q, found %s", r, s.describe())
	}
	s.next()
	return nil
}

// braced reads up to the brace matching an already consumed '{' and
// returns the content without the outer braces.
func (s *scanner) braced() (string, error) {
	line, col := s.line, s.col-1
	start := s.pos
	depth := 1
	for !s.eof() {
		switch s.next() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(s.src[start : s.pos-1]), nil
			}
		}
	}
	return "", errorAt(line, col, "unterminated braced value")
}

// quoted reads up to the '"' closing an already consumed one. Quotes
// inside braces do not end the value.
func (s *scanner) quoted() (string, error) {
	line, col := s.line, s.col-1
	start := s.pos
	depth := 0
	for !s.eof() {
		switch s.next() {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth <= 0 {
				return string(s.src[start : s.pos-1]), nil
			}
		}
	}
	return "", errorAt(line, col, "unterminated quoted value")
}

// skipBalanced consumes up to the delimiter closing an already consumed
// opening one.
func (s *scanner) skipBalanced(opening, closing rune) error {
	line, col := s.line, s.col-1
	depth := 1
	for !s.eof() {
		switch s.next() {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return errorAt(line, col, fmt.Sprintf("unterminated block, missing %q", closing))
}

func (s *scanner) describe() string {
	if s.eof() {
		return "end of input"
	}
	return fmt.Sprintf("%q", s.peek())
}

func (s *scanner) errorf(format string, args ...any) error {
	return errorAt(s.line, s.col, fmt.Sprintf(format, args...))
}

func errorAt(line, col int, msg string) error {
	return &SyntaxError{Line: line, Col: col, Msg: msg}
}

func isIdentRune(r rune) bool {
	return !unicode.IsSpace(r) && unicode.IsPrint(r) && !strings.ContainsRune(`{}(),="#%'@`, r)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
