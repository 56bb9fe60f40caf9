package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

// Declared JVM types that select a specific shape regardless of the JSON.
const (
	TypeCompositeData = "javax.management.openmbean.CompositeData"
	TypeTabularData   = "javax.management.openmbean.TabularData"
	TypeStringArray   = "[Ljava.lang.String;"
)

// object is a JSON object with its keys in document order.
type object []member

type member struct {
	key   string
	value any
}

// Decode converts a JSON payload into a Value. declaredType is the attribute
// type or operation return type published by the agent; it may be empty
// when the feature was not described, in which case the shape is inferred
// from the JSON alone.
func Decode(raw json.RawMessage, declaredType string) (Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Scalar{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tree, err := decodeOrdered(dec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to decode agent value", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeInternal, "trailing data after agent value")
	}

	return toValue(tree, declaredType, true), nil
}

// decodeOrdered reads one JSON value, preserving object key order.
func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		var obj object
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if obj == nil {
			obj = object{}
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

func toValue(v any, declaredType string, top bool) Value {
	switch t := v.(type) {
	case object:
		if isTabularType(declaredType) {
			rows := make([]Value, len(t))
			for i, m := range t {
				rows[i] = tableRow(m)
			}
			return Table{Rows: rows}
		}
		fields := make([]Field, len(t))
		for i, m := range t {
			fields[i] = Field{Key: m.key, Value: toValue(m.value, "", false)}
		}
		return Record{Fields: fields}
	case []any:
		if containsObject(t) {
			rows := make([]Value, len(t))
			for i, e := range t {
				rows[i] = toValue(e, "", false)
			}
			return Table{Rows: rows}
		}
		if (top || declaredType == TypeStringArray) && allStrings(t) {
			strs := make([]string, len(t))
			for i, e := range t {
				strs[i] = e.(string)
			}
			return StringArray(strs)
		}
		return Scalar{V: scalarSlice(t)}
	default:
		return Scalar{V: t}
	}
}

// tableRow turns one entry of a map-shaped table, sent as {index: value},
// back into the key/value row the bean published.
func tableRow(m member) Value {
	return Record{Fields: []Field{
		{Key: "key", Value: Scalar{V: m.key}},
		{Key: "value", Value: toValue(m.value, "", false)},
	}}
}

func isTabularType(declaredType string) bool {
	return declaredType == TypeTabularData || strings.HasPrefix(declaredType, "java.util.Map")
}

func containsObject(arr []any) bool {
	for _, e := range arr {
		if _, ok := e.(object); ok {
			return true
		}
	}
	return false
}

func allStrings(arr []any) bool {
	for _, e := range arr {
		if _, ok := e.(string); !ok {
			return false
		}
	}
	return true
}

// scalarSlice flattens nested arrays of scalars into plain slices.
func scalarSlice(arr []any) []any {
	out := make([]any, len(arr))
	for i, e := range arr {
		if nested, ok := e.([]any); ok {
			out[i] = scalarSlice(nested)
			continue
		}
		out[i] = e
	}
	return out
}
