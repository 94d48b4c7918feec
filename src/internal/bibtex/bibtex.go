package bibtex

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMalformed is wrapped by every SyntaxError returned from Parse.
var ErrMalformed = errors.New("malformed bibliography")

// Record is one @type{key, field = value, ...} entry. Type and field names are
// lower-cased; values have their outer delimiters removed.
type Record struct {
	Type   string
	Key    string
	Fields map[string]string
	Line   int
}

// SyntaxError reports where parsing stopped.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid bib: line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }

// ParseFile reads and parses the bibliography at path.
func ParseFile(path string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	recs, err := Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// Parse parses BibTeX source into records in file order. @comment and @preamble
// blocks are skipped, as is a bare @comment line; @string macros are expanded
// in bare values. Text between entries is ignored, as BibTeX does, including
// an '@' not followed by a type and an opening '{' or '('.
func Parse(s string) ([]Record, error) {
	p := &parser{s: s, macros: map[string]string{}}
	var recs []Record
	for {
		p.skipWS()
		if p.eof() {
			break
		}
		if p.s[p.i] != '@' {
			p.i++
			continue
		}
		start := p.i
		p.i++
		typ := strings.ToLower(p.readIdent())
		identEnd := p.i
		p.skipSpace()
		if p.eof() || (p.s[p.i] != '{' && p.s[p.i] != '(') {
			if typ == "comment" {
				p.i = identEnd
				p.skipLine()
			} else {
				// a stray '@' in free text, e.g. an email address
				p.i = start + 1
			}
			continue
		}
		if typ == "" {
			return nil, p.errorf("expected entry type after '@'")
		}
		closer := byte('}')
		if p.s[p.i] == '(' {
			closer = ')'
		}
		p.i++
		switch typ {
		case "comment", "preamble":
			if err := p.skipBalanced(closer); err != nil {
				return nil, err
			}
			continue
		case "string":
			if err := p.readMacro(closer); err != nil {
				return nil, err
			}
			continue
		}
		rec, err := p.readEntry(typ, closer)
		if err != nil {
			return nil, err
		}
		rec.Line = p.lineAt(start)
		recs = append(recs, rec)
	}
	return recs, nil
}

type parser struct {
	s      string
	i      int
	macros map[string]string
}

func (p *parser) eof() bool { return p.i >= len(p.s) }

func (p *parser) lineAt(off int) int {
	if off > len(p.s) {
		off = len(p.s)
	}
	return 1 + strings.Count(p.s[:off], "\n")
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.lineAt(p.i), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

// skipWS skips whitespace and % line comments.
func (p *parser) skipWS() {
	for !p.eof() {
		if p.s[p.i] == '%' {
			for !p.eof() && p.s[p.i] != '\n' {
				p.i++
			}
			continue
		}
		if strings.IndexByte(" \t\r\n", p.s[p.i]) < 0 {
			return
		}
		p.i++
	}
}

// skipSpace skips whitespace only, so a '%' after a type is not a comment.
func (p *parser) skipSpace() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.s[p.i]) >= 0 {
		p.i++
	}
}

func (p *parser) skipLine() {
	for !p.eof() && p.s[p.i] != '\n' {
		p.i++
	}
}

func (p *parser) readIdent() string {
	start := p.i
	for !p.eof() && isLetter(p.s[p.i]) {
		p.i++
	}
	return p.s[start:p.i]
}

// readName reads a field or macro name.
func (p *parser) readName() string {
	start := p.i
	for !p.eof() && (isLetter(p.s[p.i]) || isDigit(p.s[p.i]) || strings.IndexByte("_-:.+/", p.s[p.i]) >= 0) {
		p.i++
	}
	return p.s[start:p.i]
}

func (p *parser) skipBalanced(closer byte) error {
	depth := 0
	for !p.eof() {
		c := p.s[p.i]
		p.i++
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			return nil
		}
	}
	return p.errorf("unexpected EOF in block")
}

func (p *parser) readMacro(closer byte) error {
	p.skipWS()
	name := strings.ToLower(p.readName())
	if name == "" {
		return p.errorf("expected macro name in @string")
	}
	p.skipWS()
	if !p.consume('=') {
		return p.errorf("expected '=' after macro name %q", name)
	}
	val, err := p.readValue(closer)
	if err != nil {
		return err
	}
	p.macros[name] = val
	p.skipWS()
	if !p.consume(closer) {
		return p.errorf("expected %q to close @string", closer)
	}
	return nil
}

func (p *parser) readEntry(typ string, closer byte) (Record, error) {
	p.skipWS()
	start := p.i
	for !p.eof() && p.s[p.i] != ',' && p.s[p.i] != closer {
		p.i++
	}
	if p.eof() {
		return Record{}, p.errorf("missing comma after key")
	}
	key := strings.TrimSpace(p.s[start:p.i])
	rec := Record{Type: typ, Key: key, Fields: map[string]string{}}
	if p.consume(closer) {
		return rec, nil
	}
	p.i++ // comma
	for {
		p.skipWS()
		if p.eof() {
			return Record{}, p.errorf("unexpected EOF in fields of %q", key)
		}
		if p.consume(closer) {
			return rec, nil
		}
		fname := strings.ToLower(p.readName())
		if fname == "" {
			return Record{}, p.errorf("expected field name in %q", key)
		}
		p.skipWS()
		if !p.consume('=') {
			return Record{}, p.errorf("expected '=' after field name %q", fname)
		}
		val, err := p.readValue(closer)
		if err != nil {
			return Record{}, err
		}
		rec.Fields[fname] = val
		p.skipWS()
		if p.consume(',') {
			continue
		}
		if p.consume(closer) {
			return rec, nil
		}
		return Record{}, p.errorf("expected ',' or %q after field %q", closer, fname)
	}
}

// readValue reads one value: brace-delimited, quote-delimited or bare pieces
// joined with '#'.
func (p *parser) readValue(closer byte) (string, error) {
	var b strings.Builder
	for {
		p.skipWS()
		if p.eof() {
			return "", p.errorf("unexpected EOF in value")
		}
		switch p.s[p.i] {
		case '{':
			v, err := p.readBraced()
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		case '"':
			v, err := p.readQuoted()
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		default:
			tok := p.readBare(closer)
			if tok == "" {
				return "", p.errorf("expected value")
			}
			if v, ok := p.macros[strings.ToLower(tok)]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(tok)
			}
		}
		p.skipWS()
		if !p.consume('#') {
			break
		}
	}
	return unescapeBib(b.String()), nil
}

func (p *parser) readBraced() (string, error) {
	depth := 0
	p.i++
	start := p.i
	for !p.eof() {
		switch p.s[p.i] {
		case '\\':
			p.i += 2
			continue
		case '{':
			depth++
		case '}':
			if depth == 0 {
				v := p.s[start:p.i]
				p.i++
				return v, nil
			}
			depth--
		}
		p.i++
	}
	return "", p.errorf("unterminated '{' value")
}

func (p *parser) readQuoted() (string, error) {
	depth := 0
	p.i++
	start := p.i
	for !p.eof() {
		switch p.s[p.i] {
		case '\\':
			p.i += 2
			continue
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth == 0 {
				v := p.s[start:p.i]
				p.i++
				return v, nil
			}
		}
		p.i++
	}
	return "", p.errorf("unterminated '\"' value")
}

func (p *parser) readBare(closer byte) string {
	start := p.i
	for !p.eof() {
		c := p.s[p.i]
		if c == ',' || c == closer || c == '}' || c == '#' || strings.IndexByte(" \t\r\n", c) >= 0 {
			break
		}
		p.i++
	}
	return p.s[start:p.i]
}

func unescapeBib(s string) string {
	s = strings.ReplaceAll(s, "\\{", "{")
	s = strings.ReplaceAll(s, "\\}", "}")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func isLetter(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
