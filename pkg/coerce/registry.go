// Package coerce converts plain-text command arguments into values of the
// types an attribute or operation declares.
//
// Conversions are looked up by the JVM type name the agent publishes
// ("int", "java.lang.Long", "javax.management.ObjectName", ...) in a
// Registry. The default registry covers primitives, their wrappers and the
// common types that can be built from a single string; callers can add more
// with Register or WithConverter.
package coerce

import (
	"fmt"
	"maps"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

// ParseFunc builds a value of one declared type from its textual form.
type ParseFunc func(s string) (any, error)

// Registry maps declared type names to conversion functions.
type Registry struct {
	converters map[string]ParseFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithConverter adds or replaces the conversion for typeName.
func WithConverter(typeName string, fn ParseFunc) Option {
	return func(r *Registry) {
		r.converters[typeName] = fn
	}
}

// WithoutDefaults starts from an empty registry.
func WithoutDefaults() Option {
	return func(r *Registry) {
		clear(r.converters)
	}
}

// NewRegistry returns a registry pre-populated with the default converters.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{converters: make(map[string]ParseFunc, len(defaultConverters))}
	maps.Copy(r.converters, defaultConverters)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces the conversion for typeName.
func (r *Registry) Register(typeName string, fn ParseFunc) {
	r.converters[typeName] = fn
}

// Convert builds one value of typeName from raw.
func (r *Registry) Convert(raw, typeName string) (any, error) {
	fn, ok := r.converters[typeName]
	if !ok {
		return nil, errors.WrapWithContext(errors.ErrCodeUnsupportedType,
			fmt.Sprintf("type %s cannot be built from a string", typeName), nil,
			map[string]any{"type": typeName})
	}

	v, err := fn(raw)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeCoercionFailed,
			fmt.Sprintf("%q is not a valid %s", raw, typeName), err,
			map[string]any{"type": typeName, "value": raw})
	}
	return v, nil
}

// Coerce converts each argument to the type at the same position. The
// argument count must match the number of types.
func (r *Registry) Coerce(raw []string, types []string) ([]any, error) {
	if len(raw) != len(types) {
		return nil, errors.WrapWithContext(errors.ErrCodeArityMismatch,
			fmt.Sprintf("passed %d argument(s) but the signature declares %d", len(raw), len(types)), nil,
			map[string]any{"arguments": len(raw), "parameters": len(types)})
	}

	values := make([]any, len(raw))
	for i := range raw {
		v, err := r.Convert(raw[i], types[i])
		if err != nil {
			return nil, errors.WithContext(err, map[string]any{"position": i})
		}
		values[i] = v
	}
	return values, nil
}

// CoerceAttribute converts the value of an attribute assignment. No
// argument means the attribute is read (set is false); exactly one argument
// is converted to the attribute type; more than one is an arity error.
func (r *Registry) CoerceAttribute(raw []string, typeName string) (value any, set bool, err error) {
	switch len(raw) {
	case 0:
		return nil, false, nil
	case 1:
		v, err := r.Convert(raw[0], typeName)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	default:
		return nil, false, errors.WrapWithContext(errors.ErrCodeArityMismatch,
			fmt.Sprintf("an attribute takes exactly one value, got %d", len(raw)), nil,
			map[string]any{"arguments": len(raw), "parameters": 1})
	}
}
