package result

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the scalar as its JSON value. Numbers keep the
// literal the agent sent.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.V)
}

// MarshalJSON encodes the record as an object with fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the table as an array of rows.
func (t Table) MarshalJSON() ([]byte, error) {
	rows := make([]json.RawMessage, len(t.Rows))
	for i, row := range t.Rows {
		data, err := marshalValue(row)
		if err != nil {
			return nil, err
		}
		rows[i] = data
	}
	return json.Marshal(rows)
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// MarshalYAML encodes the scalar as its plain value.
func (s Scalar) MarshalYAML() (any, error) {
	return yamlNode(s)
}

// MarshalYAML encodes the record as a mapping with fields in order.
func (r Record) MarshalYAML() (any, error) {
	return yamlNode(r)
}

// MarshalYAML encodes the table as a sequence of rows.
func (t Table) MarshalYAML() (any, error) {
	return yamlNode(t)
}

func yamlNode(v Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case Record:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range t.Fields {
			val, err := yamlNode(f.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}, val)
		}
		return n, nil
	case Table:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, row := range t.Rows {
			val, err := yamlNode(row)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	case StringArray:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range t {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s})
		}
		return n, nil
	case Scalar:
		return scalarNode(t.V)
	}
	return nil, nil
}

func scalarNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: FormatScalar(t)}, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, e := range t {
			child, err := scalarNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(t); err != nil {
			return nil, err
		}
		return n, nil
	}
}
