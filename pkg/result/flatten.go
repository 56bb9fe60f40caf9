package result

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flatten renders v as text.
//
// A named record prints a "name:" header and shifts everything under it one
// space right. A nested record gets one more space and its key as name. A
// nested table gets its key as name at the record's indent; its header does
// not shift its rows, and only record rows are indented one more space.
// String arrays print one element per line.
func Flatten(v Value) string {
	var b strings.Builder
	switch t := v.(type) {
	case Record:
		flattenRecord(&b, "", "", t)
	case Table:
		flattenTable(&b, "", "", t)
	case StringArray:
		flattenStrings(&b, t)
	case Scalar:
		b.WriteString(FormatScalar(t.V))
	}
	return b.String()
}

// Render produces the output line(s) for one command. Scalars render as
// "name: text". Records and tables start on the line after "name: ".
// A nil value or a null result renders as the empty string.
func Render(name string, v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case Scalar:
		if t.V == nil {
			return ""
		}
		return name + ": " + Flatten(v)
	case Record, Table:
		return name + ": \n" + Flatten(v)
	default:
		return name + ": " + Flatten(v)
	}
}

func flattenRecord(b *strings.Builder, indent, name string, r Record) {
	indent = writeHeader(b, indent, name)

	for _, f := range r.Fields {
		switch fv := f.Value.(type) {
		case Record:
			flattenRecord(b, indent+" ", f.Key, fv)
		case Table:
			flattenTable(b, indent, f.Key, fv)
		case StringArray:
			b.WriteString(indent)
			b.WriteString(f.Key)
			b.WriteString(": ")
			flattenStrings(b, fv)
		case Scalar:
			b.WriteString(indent)
			b.WriteString(f.Key)
			b.WriteString(": ")
			b.WriteString(FormatScalar(fv.V))
			b.WriteString("\n")
		}
	}
}

// flattenTable writes the header but does not shift the rows under it.
func flattenTable(b *strings.Builder, indent, name string, t Table) {
	writeHeader(b, indent, name)

	for _, row := range t.Rows {
		switch rv := row.(type) {
		case Record:
			flattenRecord(b, indent+" ", "", rv)
		case Table:
			flattenTable(b, indent, "", rv)
		case StringArray:
			flattenStrings(b, rv)
		case Scalar:
			b.WriteString(FormatScalar(rv.V))
		}
	}
}

// writeHeader writes "name:" at indent and returns the indent of the lines
// under it. An empty name writes nothing.
func writeHeader(b *strings.Builder, indent, name string) string {
	if name == "" {
		return indent
	}
	b.WriteString(indent)
	b.WriteString(name)
	b.WriteString(":\n")
	return indent + " "
}

func flattenStrings(b *strings.Builder, s StringArray) {
	b.WriteString("\n")
	for _, e := range s {
		b.WriteString(e)
		b.WriteString("\n")
	}
}

// FormatScalar returns the textual form of a scalar value.
func FormatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = FormatScalar(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}
