// Package invoker turns command tokens into remote calls on one bean.
//
// Each token goes through the same pipeline, strictly in order:
//
//	command.Parse -> resolver.Resolve -> coerce -> Session call -> result.Decode
//
// Plan covers the local half (parse, resolve, coerce) and yields an Action;
// Invoke performs the remote half. Run drives a whole batch against one
// bean and stops at the first failure.
package invoker

import (
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/beanctl/pkg/agent"
	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/coerce"
	"github.com/NVIDIA/beanctl/pkg/command"
	"github.com/NVIDIA/beanctl/pkg/errors"
	"github.com/NVIDIA/beanctl/pkg/resolver"
	"github.com/NVIDIA/beanctl/pkg/result"
)

// Action is a resolved command: AttributeGet, AttributeSet or OperationCall.
type Action interface {
	// Feature returns the attribute or operation name.
	Feature() string
	isAction()
}

// AttributeGet reads an attribute. Type is empty when the bean did not
// describe the attribute.
type AttributeGet struct {
	Attribute bean.AttributeInfo
}

// AttributeSet writes one coerced value to an attribute.
type AttributeSet struct {
	Attribute bean.AttributeInfo
	Value     any
}

// OperationCall invokes an operation with coerced arguments.
type OperationCall struct {
	Operation bean.OperationInfo
	Args      []any
}

func (a AttributeGet) Feature() string  { return a.Attribute.Name }
func (a AttributeSet) Feature() string  { return a.Attribute.Name }
func (o OperationCall) Feature() string { return o.Operation.Name }

func (AttributeGet) isAction()  {}
func (AttributeSet) isAction()  {}
func (OperationCall) isAction() {}

// Plan resolves cmd against the bean's catalog and coerces its arguments.
//
// An unknown attribute read is passed through so the agent can answer it.
// An unknown operation, or a write to an unknown attribute, fails with
// ErrCodeFeatureNotFound since there is no declared type to coerce to.
func Plan(cmd *command.Command, info *bean.Info, registry *coerce.Registry) (Action, error) {
	feature, err := resolver.Resolve(cmd.Name, info.Attributes, info.Operations)
	if err != nil {
		return nil, err
	}

	switch feature.Kind {
	case resolver.KindAttribute:
		if feature.Attribute == nil {
			if cmd.HasArgs() {
				return nil, resolver.NotFound(feature, info.Attributes, info.Operations)
			}
			return AttributeGet{Attribute: bean.AttributeInfo{Name: feature.Name}}, nil
		}

		value, set, err := registry.CoerceAttribute(cmd.Args, feature.Attribute.Type)
		if err != nil {
			return nil, err
		}
		if set {
			return AttributeSet{Attribute: *feature.Attribute, Value: value}, nil
		}
		return AttributeGet{Attribute: *feature.Attribute}, nil

	default:
		if feature.Operation == nil {
			return nil, resolver.NotFound(feature, info.Attributes, info.Operations)
		}

		args, err := registry.Coerce(cmd.Args, feature.Operation.Signature())
		if err != nil {
			return nil, err
		}
		return OperationCall{Operation: *feature.Operation, Args: args}, nil
	}
}

// Output is the outcome of one command token.
type Output struct {
	// Command is the raw token.
	Command string `json:"command" yaml:"command"`
	// Feature is the attribute or operation name.
	Feature string `json:"feature" yaml:"feature"`
	// Kind is attribute or operation.
	Kind resolver.Kind `json:"kind" yaml:"kind"`
	// Value is nil for attribute writes and void operations.
	Value result.Value `json:"value,omitempty" yaml:"value,omitempty"`
}

// Text renders the output as "feature: value". It is empty when there is
// no value.
func (o Output) Text() string {
	return result.Render(o.Feature, o.Value)
}

// Invoker runs commands through a Session.
type Invoker struct {
	session  agent.Session
	registry *coerce.Registry
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithRegistry replaces the default type-converter registry.
func WithRegistry(r *coerce.Registry) Option {
	return func(iv *Invoker) {
		iv.registry = r
	}
}

// New creates an Invoker on session.
func New(session agent.Session, opts ...Option) *Invoker {
	iv := &Invoker{session: session}
	for _, opt := range opts {
		opt(iv)
	}
	if iv.registry == nil {
		iv.registry = coerce.NewRegistry()
	}
	return iv
}

// Invoke performs action on the bean. Attribute writes and void operations
// return a nil Value.
func (iv *Invoker) Invoke(ctx context.Context, name bean.ObjectName, action Action) (result.Value, error) {
	switch a := action.(type) {
	case AttributeGet:
		raw, err := iv.session.GetAttribute(ctx, name, a.Attribute.Name)
		if err != nil {
			return nil, err
		}
		return result.Decode(raw, a.Attribute.Type)

	case AttributeSet:
		return nil, iv.session.SetAttribute(ctx, name, a.Attribute.Name, a.Value)

	case OperationCall:
		raw, err := iv.session.Invoke(ctx, name, a.Operation.Name, a.Args, a.Operation.Signature())
		if err != nil {
			return nil, err
		}
		if a.Operation.IsVoid() {
			return nil, nil
		}
		return result.Decode(raw, a.Operation.ReturnType)

	default:
		return nil, errors.Newf(errors.ErrCodeInternal, "unknown action %T", action)
	}
}

// Run executes tokens against the bean in order. The bean's catalog is
// fetched once. The first failure stops the batch: the outputs of the
// tokens already completed are returned with an error that names the
// failing token and the bean.
func (iv *Invoker) Run(ctx context.Context, name bean.ObjectName, tokens []string) ([]Output, error) {
	info, err := iv.session.Introspect(ctx, name)
	if err != nil {
		return nil, errors.WithContext(err, map[string]any{"bean": name.String()})
	}

	outputs := make([]Output, 0, len(tokens))
	for _, token := range tokens {
		out, err := iv.runOne(ctx, name, info, token)
		if err != nil {
			return outputs, errors.WithContext(err, map[string]any{"command": token, "bean": name.String()})
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (iv *Invoker) runOne(ctx context.Context, name bean.ObjectName, info *bean.Info, token string) (Output, error) {
	start := time.Now()
	slog.Debug("running command", "bean", name.String(), "command", token)

	kind := "unknown"
	out, err := func() (Output, error) {
		cmd, err := command.Parse(token)
		if err != nil {
			return Output{}, err
		}

		action, err := Plan(cmd, info, iv.registry)
		if err != nil {
			return Output{}, err
		}
		kind = string(actionKind(action))

		value, err := iv.Invoke(ctx, name, action)
		if err != nil {
			return Output{}, err
		}

		return Output{
			Command: token,
			Feature: action.Feature(),
			Kind:    actionKind(action),
			Value:   value,
		}, nil
	}()

	status := "success"
	if err != nil {
		status = "error"
	}
	commandDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	commandTotal.WithLabelValues(kind, status).Inc()

	return out, err
}

func actionKind(a Action) resolver.Kind {
	if _, ok := a.(OperationCall); ok {
		return resolver.KindOperation
	}
	return resolver.KindAttribute
}
