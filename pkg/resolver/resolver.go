// Package resolver decides whether a command name refers to an attribute or
// an operation of a bean.
//
// Most beans follow the convention that attribute names start with an
// uppercase letter and operation names do not. A few do not (the Berkeley DB
// JE bean is the known case), so the convention is only the first guess:
//
//   - uppercase first letter: attribute, unless there is no such attribute
//     but there is an operation with that name;
//   - anything else: operation, unless there is no such operation but there
//     is an attribute with that name.
//
// A name found in neither list still resolves to the first guess, with no
// descriptor attached. The agent is the authority on existence.
package resolver

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/errors"
)

// Kind distinguishes attributes from operations.
type Kind string

const (
	KindAttribute Kind = "attribute"
	KindOperation Kind = "operation"
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 3

// Feature is the outcome of resolving a name. Exactly one of Attribute and
// Operation is set when the name is known to the bean; both are nil otherwise.
type Feature struct {
	Name      string
	Kind      Kind
	Attribute *bean.AttributeInfo
	Operation *bean.OperationInfo
}

// Known reports whether the bean published a descriptor for the feature.
func (f Feature) Known() bool {
	return f.Attribute != nil || f.Operation != nil
}

// Resolve picks the attribute or operation the name most likely refers to.
// The first declared attribute or operation with the name wins.
func Resolve(name string, attributes []bean.AttributeInfo, operations []bean.OperationInfo) (Feature, error) {
	if name == "" {
		return Feature{}, errors.New(errors.ErrCodeFeatureNotFound, "empty feature name")
	}

	attr := findAttribute(attributes, name)
	op := findOperation(operations, name)

	first, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(first) {
		if attr == nil && op != nil {
			return operationFeature(name, op), nil
		}
		return attributeFeature(name, attr), nil
	}

	if op == nil && attr != nil {
		return attributeFeature(name, attr), nil
	}
	return operationFeature(name, op), nil
}

// NotFound builds the error returned when an unknown feature cannot be sent
// to the agent, listing the closest names as suggestions.
func NotFound(f Feature, attributes []bean.AttributeInfo, operations []bean.OperationInfo) error {
	ctx := map[string]any{"feature": f.Name, "kind": string(f.Kind)}
	if s := Suggest(f.Name, attributes, operations); len(s) > 0 {
		ctx["suggestions"] = s
	}
	return errors.WrapWithContext(errors.ErrCodeFeatureNotFound,
		string(f.Kind)+" "+f.Name+" not found", nil, ctx)
}

// Suggest returns up to three feature names within a small edit distance of
// name, closest first.
func Suggest(name string, attributes []bean.AttributeInfo, operations []bean.OperationInfo) []string {
	type candidate struct {
		name     string
		distance int
	}

	seen := make(map[string]bool)
	var candidates []candidate
	consider := func(n string) {
		if seen[n] || n == name {
			return
		}
		seen[n] = true
		if d := levenshtein.ComputeDistance(name, n); d <= maxSuggestionDistance {
			candidates = append(candidates, candidate{name: n, distance: d})
		}
	}
	for _, a := range attributes {
		consider(a.Name)
	}
	for _, o := range operations {
		consider(o.Name)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})

	var out []string
	for i := 0; i < len(candidates) && i < 3; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}

func attributeFeature(name string, a *bean.AttributeInfo) Feature {
	return Feature{Name: name, Kind: KindAttribute, Attribute: a}
}

func operationFeature(name string, o *bean.OperationInfo) Feature {
	return Feature{Name: name, Kind: KindOperation, Operation: o}
}

func findAttribute(attributes []bean.AttributeInfo, name string) *bean.AttributeInfo {
	for i := range attributes {
		if attributes[i].Name == name {
			return &attributes[i]
		}
	}
	return nil
}

func findOperation(operations []bean.OperationInfo, name string) *bean.OperationInfo {
	for i := range operations {
		if operations[i].Name == name {
			return &operations[i]
		}
	}
	return nil
}
