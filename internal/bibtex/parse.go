package bibtex

import (
	"fmt"
	"strings"
)

// MalformedError describes unparseable BibTeX input. Line is 1-indexed.
type MalformedError struct {
	Line int
	Msg  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed bibtex at line %d: %s", e.Line, e.Msg)
}

// Parse parses text into records, preserving entry and field order.
//
// Text between entries (anything before an '@') is treated as inter-entry
// commentary and discarded, following BibTeX convention. Any structural
// problem inside an entry (unbalanced braces, a missing citation key, a
// duplicate field or citation key) fails the whole parse with a
// *MalformedError.
func Parse(text string) ([]Record, error) {
	p := &parser{src: text, line: 1}
	var records []Record
	seen := make(map[string]int)

	for {
		if !p.skipToEntry() {
			break
		}
		rec, err := p.entry()
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[rec.Key]; dup {
			return nil, p.errorf("duplicate citation key %q (first defined at line %d)", rec.Key, prev)
		}
		seen[rec.Key] = p.line
		records = append(records, rec)
	}
	return records, nil
}

type parser struct {
	src  string
	pos  int
	line int
}

func (p *parser) errorf(format string, args ...interface{}) *MalformedError {
	return &MalformedError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
	}
	return c
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.advance()
		default:
			return
		}
	}
}

// skipToEntry discards input up to the next '@' and reports whether one was
// found. The '@' itself is consumed.
func (p *parser) skipToEntry() bool {
	for !p.eof() {
		if p.advance() == '@' {
			return true
		}
	}
	return false
}

// ident reads a bare identifier (entry types, field names, citation keys).
func (p *parser) ident(what string) (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == '{' || c == '}' || c == ',' || c == '=' || c == '(' ||
			c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			break
		}
		p.advance()
	}
	if p.pos == start {
		return "", p.errorf("expected %s", what)
	}
	return p.src[start:p.pos], nil
}

// entry parses one record; the leading '@' has already been consumed.
func (p *parser) entry() (Record, error) {
	var rec Record

	typ, err := p.ident("entry type after '@'")
	if err != nil {
		return rec, err
	}
	rec.Type = strings.ToLower(typ)

	p.skipSpace()
	if p.eof() || p.peek() != '{' {
		return rec, p.errorf("expected '{' after @%s", rec.Type)
	}
	p.advance()

	p.skipSpace()
	key, err := p.ident("citation key")
	if err != nil {
		return rec, err
	}
	rec.Key = key

	names := make(map[string]bool)
	for {
		p.skipSpace()
		if p.eof() {
			return rec, p.errorf("unterminated entry @%s{%s", rec.Type, rec.Key)
		}
		switch p.peek() {
		case '}':
			p.advance()
			return rec, nil
		case ',':
			p.advance()
			continue
		}

		name, err := p.ident("field name")
		if err != nil {
			return rec, err
		}
		name = strings.ToLower(name)
		if names[name] {
			return rec, p.errorf("duplicate field %q in @%s{%s", name, rec.Type, rec.Key)
		}
		names[name] = true

		p.skipSpace()
		if p.eof() || p.peek() != '=' {
			return rec, p.errorf("expected '=' after field %q", name)
		}
		p.advance()
		p.skipSpace()

		value, err := p.value(name)
		if err != nil {
			return rec, err
		}
		rec.Fields = append(rec.Fields, Field{Name: name, Value: value})
	}
}

// value parses a field value: braced, quoted, or bare (numbers, month
// macros). Braces must balance, including inside quoted values, so the
// serializer can always re-emit the value in braces.
func (p *parser) value(field string) (string, error) {
	if p.eof() {
		return "", p.errorf("missing value for field %q", field)
	}
	switch p.peek() {
	case '{':
		p.advance()
		return p.delimited(field, '}', true)
	case '"':
		p.advance()
		return p.delimited(field, '"', false)
	default:
		return p.ident(fmt.Sprintf("value for field %q", field))
	}
}

// delimited consumes until the closing delimiter at brace depth zero. For
// braced values the outer braces contribute to depth; for quoted values the
// quote closes only at depth zero.
func (p *parser) delimited(field string, closer byte, braced bool) (string, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '{':
			depth++
		case c == '}' && braced && depth == 0:
			val := p.src[start:p.pos]
			p.advance()
			return val, nil
		case c == '}':
			depth--
			if depth < 0 {
				return "", p.errorf("unbalanced braces in field %q", field)
			}
		case c == closer && depth == 0:
			val := p.src[start:p.pos]
			p.advance()
			return val, nil
		}
		p.advance()
	}
	return "", p.errorf("unterminated value for field %q", field)
}
