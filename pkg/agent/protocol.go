package agent

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"time"
)

// Request types understood by the agent.
const (
	TypeRead    = "read"
	TypeWrite   = "write"
	TypeExec    = "exec"
	TypeList    = "list"
	TypeSearch  = "search"
	TypeVersion = "version"
)

// request is a single agent request document.
type request struct {
	Type      string `json:"type"`
	MBean     string `json:"mbean,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Value     any    `json:"value,omitempty"`
	Operation string `json:"operation,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
	Path      string `json:"path,omitempty"`
}

// response is the agent's answer to a single request.
type response struct {
	Value     json.RawMessage `json:"value"`
	Status    int             `json:"status"`
	ErrorType string          `json:"error_type,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// VersionInfo identifies the agent.
type VersionInfo struct {
	Agent    string `json:"agent" yaml:"agent"`
	Protocol string `json:"protocol" yaml:"protocol"`
}

// listBean is the introspection document returned by a list request
// addressed at a single bean.
type listBean struct {
	Class string                     `json:"class"`
	Desc  string                     `json:"desc"`
	Attr  map[string]listAttribute   `json:"attr"`
	Op    map[string]json.RawMessage `json:"op"`
}

type listAttribute struct {
	Type string `json:"type"`
	Desc string `json:"desc"`
	RW   bool   `json:"rw"`
}

// listOperation is one operation signature. Overloaded operations are
// published as an array of these.
type listOperation struct {
	Args []listArgument `json:"args"`
	Ret  string         `json:"ret"`
	Desc string         `json:"desc"`
}

type listArgument struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Desc string `json:"desc"`
}

// operationName returns the name the agent expects for exec requests. An
// explicit signature selects one overload: "name(type1,type2)".
func operationName(name string, signature []string) string {
	if signature == nil {
		return name
	}
	return name + "(" + strings.Join(signature, ",") + ")"
}

// escapePath escapes one element of a list path. The agent uses "/" as
// the path separator and "!" as its escape character.
func escapePath(s string) string {
	s = strings.ReplaceAll(s, "!", "!!")
	return strings.ReplaceAll(s, "/", "!/")
}

// wireValue converts a coerced argument into a value the agent can parse
// back into the declared type.
func wireValue(v any) any {
	switch t := v.(type) {
	case *url.URL:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return floatString(t)
		}
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return floatString(float64(t))
		}
	}
	return v
}

func floatString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	default:
		return "-Infinity"
	}
}

func wireValues(values []any) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = wireValue(v)
	}
	return out
}
