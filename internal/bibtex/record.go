// Package bibtex parses and serializes BibTeX records.
//
// The codec is deliberately narrow: it models an entry as a type, a citation
// key, and an ordered list of fields, and round-trips any field it does not
// understand verbatim. It is not a full BibTeX grammar: crossref resolution,
// @string macros, and concatenation are out of scope.
package bibtex

import "strings"

// Field is one name/value pair in a record. Values are stored without their
// outer delimiters ({...} or "...").
type Field struct {
	Name  string
	Value string
}

// Record is one bibliographic entry.
type Record struct {
	// Type is the entry type (e.g. "article", "book"), lowercased.
	Type string

	// Key is the citation key.
	Key string

	// Fields in source order. Names are lowercased; duplicates are rejected
	// at parse time.
	Fields []Field
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the named field's value, or appends the field if absent.
func (r *Record) Set(name, value string) {
	name = strings.ToLower(name)
	for i, f := range r.Fields {
		if f.Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Delete removes the named field. It reports whether the field was present.
func (r *Record) Delete(name string) bool {
	name = strings.ToLower(name)
	for i, f := range r.Fields {
		if f.Name == name {
			r.Fields = append(r.Fields[:i], r.Fields[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() Record {
	out := Record{Type: r.Type, Key: r.Key}
	out.Fields = make([]Field, len(r.Fields))
	copy(out.Fields, r.Fields)
	return out
}

// Merge layers src's fields onto r: src values win on name collision, fields
// present only in r are retained in place. Entry type and key follow src.
func (r *Record) Merge(src Record) {
	r.Type = src.Type
	r.Key = src.Key
	for _, f := range src.Fields {
		r.Set(f.Name, f.Value)
	}
}

// Equal reports whether two records have the same type, key, and
// field-for-field equal field mappings (order-insensitive).
func Equal(a, b Record) bool {
	if a.Type != b.Type || a.Key != b.Key || len(a.Fields) != len(b.Fields) {
		return false
	}
	for _, f := range a.Fields {
		v, ok := b.Get(f.Name)
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}
