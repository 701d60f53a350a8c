package bibtex

import "strings"

// Serialize renders records back to BibTeX text.
//
// Output is normalized (two-space indent, brace-delimited values, one blank
// line between records) but field order and content are preserved, so
// reparsing yields field-for-field equal records.
func Serialize(records []Record) string {
	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		writeRecord(&b, rec)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, rec Record) {
	b.WriteString("@")
	b.WriteString(rec.Type)
	b.WriteString("{")
	b.WriteString(rec.Key)
	b.WriteString(",\n")
	for i, f := range rec.Fields {
		b.WriteString("  ")
		b.WriteString(f.Name)
		b.WriteString(" = {")
		b.WriteString(f.Value)
		b.WriteString("}")
		if i < len(rec.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}
