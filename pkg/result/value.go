// Package result models the values returned by attribute reads and
// operation calls, and renders them as indented text.
//
// The agent returns JSON. Composite values (records) keep the order in which
// the agent listed their keys, tabular values are sequences of rows, string
// arrays are kept apart so they can be printed one element per line, and
// everything else is a scalar.
package result

// Value is a structured result. It is one of Scalar, Record, Table or
// StringArray and is never mutated after decoding.
type Value interface {
	isValue()
}

// Scalar is a leaf value: a string, json.Number, bool, nil, or a slice of
// scalars.
type Scalar struct {
	V any
}

// Field is one named member of a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is a composite value with ordered fields.
type Record struct {
	Fields []Field
}

// Table is a tabular value: an ordered sequence of rows. Rows are usually
// Records but may be nested Tables or Scalars.
type Table struct {
	Rows []Value
}

// StringArray is an array of strings.
type StringArray []string

func (Scalar) isValue()      {}
func (Record) isValue()      {}
func (Table) isValue()       {}
func (StringArray) isValue() {}

