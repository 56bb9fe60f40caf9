package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/errors"
)

// Session is a management session with one agent. Implementations must be
// safe to use from a single goroutine; calls are blocking round trips.
type Session interface {
	// Introspect returns the attribute and operation catalog of a bean.
	Introspect(ctx context.Context, name bean.ObjectName) (*bean.Info, error)

	// GetAttribute returns the raw JSON value of an attribute.
	GetAttribute(ctx context.Context, name bean.ObjectName, attribute string) (json.RawMessage, error)

	// SetAttribute sets an attribute to value.
	SetAttribute(ctx context.Context, name bean.ObjectName, attribute string, value any) error

	// Invoke calls an operation. signature lists the declared parameter
	// types and selects the overload; nil lets the agent pick.
	Invoke(ctx context.Context, name bean.ObjectName, operation string, args []any, signature []string) (json.RawMessage, error)

	// QueryNames returns the names of registered beans matching pattern.
	// A nil pattern matches every bean.
	QueryNames(ctx context.Context, pattern *bean.ObjectName) ([]bean.ObjectName, error)

	// Version returns the agent's version information.
	Version(ctx context.Context) (*VersionInfo, error)

	// Close releases the session's resources.
	Close() error
}

// Client is the Session implementation backed by a Transport.
type Client struct {
	transport Transport
	limiter   *rate.Limiter
}

var _ Session = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRateLimit paces requests to at most perSecond with the given burst.
// A non-positive rate leaves requests unpaced.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a client on top of transport.
func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{transport: transport}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect creates a client and verifies the agent answers a version
// request, so that bad endpoints and credentials fail before any command.
func Connect(ctx context.Context, transport Transport, opts ...Option) (*Client, error) {
	c := NewClient(transport, opts...)

	v, err := c.Version(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	slog.Debug("connected to agent", "agent", v.Agent, "protocol", v.Protocol)
	return c, nil
}

// Introspect issues a list request for the bean.
func (c *Client) Introspect(ctx context.Context, name bean.ObjectName) (*bean.Info, error) {
	req := request{
		Type: TypeList,
		Path: escapePath(name.Domain) + "/" + escapePath(name.CanonicalKeyPropertyList()),
	}

	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, errors.WithContext(err, map[string]any{"bean": name.String()})
	}

	var lb listBean
	if err := json.Unmarshal(raw, &lb); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "invalid introspection document", err,
			map[string]any{"bean": name.String()})
	}

	return lb.info()
}

// GetAttribute issues a read request.
func (c *Client) GetAttribute(ctx context.Context, name bean.ObjectName, attribute string) (json.RawMessage, error) {
	raw, err := c.do(ctx, request{
		Type:      TypeRead,
		MBean:     name.String(),
		Attribute: attribute,
	})
	if err != nil {
		return nil, errors.WithContext(err, map[string]any{"bean": name.String(), "attribute": attribute})
	}
	return raw, nil
}

// SetAttribute issues a write request.
func (c *Client) SetAttribute(ctx context.Context, name bean.ObjectName, attribute string, value any) error {
	_, err := c.do(ctx, request{
		Type:      TypeWrite,
		MBean:     name.String(),
		Attribute: attribute,
		Value:     wireValue(value),
	})
	if err != nil {
		return errors.WithContext(err, map[string]any{"bean": name.String(), "attribute": attribute})
	}
	return nil
}

// Invoke issues an exec request.
func (c *Client) Invoke(ctx context.Context, name bean.ObjectName, operation string, args []any, signature []string) (json.RawMessage, error) {
	raw, err := c.do(ctx, request{
		Type:      TypeExec,
		MBean:     name.String(),
		Operation: operationName(operation, signature),
		Arguments: wireValues(args),
	})
	if err != nil {
		return nil, errors.WithContext(err, map[string]any{"bean": name.String(), "operation": operation})
	}
	return raw, nil
}

// QueryNames issues a search request. Names are returned sorted by their
// canonical form.
func (c *Client) QueryNames(ctx context.Context, pattern *bean.ObjectName) ([]bean.ObjectName, error) {
	p := "*:*"
	if pattern != nil {
		p = pattern.String()
	}

	raw, err := c.do(ctx, request{Type: TypeSearch, MBean: p})
	if err != nil {
		return nil, errors.WithContext(err, map[string]any{"pattern": p})
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "invalid search result", err)
	}

	result := make([]bean.ObjectName, 0, len(names))
	for _, n := range names {
		on, err := bean.ParseObjectName(n)
		if err != nil {
			return nil, errors.WithContext(err, map[string]any{"pattern": p})
		}
		result = append(result, on)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CanonicalName() < result[j].CanonicalName()
	})
	return result, nil
}

// Version issues a version request.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	raw, err := c.do(ctx, request{Type: TypeVersion})
	if err != nil {
		return nil, err
	}

	var v VersionInfo
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "invalid version document", err)
	}
	return &v, nil
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// do sends one request and returns the value of a successful response.
func (c *Client) do(ctx context.Context, req request) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, "rate limiter wait aborted", err)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to encode agent request", err)
	}

	start := time.Now()
	raw, err := c.transport.RoundTrip(ctx, body)
	agentRequestDuration.WithLabelValues(req.Type).Observe(time.Since(start).Seconds())
	if err != nil {
		agentRequestTotal.WithLabelValues(req.Type, "error").Inc()
		return nil, err
	}

	resp, err := decodeResponse(raw)
	if err != nil {
		agentRequestTotal.WithLabelValues(req.Type, "error").Inc()
		return nil, err
	}

	if resp.Status != http.StatusOK {
		agentRequestTotal.WithLabelValues(req.Type, "error").Inc()
		slog.Debug("agent request failed",
			"type", req.Type,
			"mbean", req.MBean,
			"status", resp.Status,
			"errorType", resp.ErrorType)
		return nil, remoteError(resp.Status, resp.ErrorType, resp.Error)
	}

	agentRequestTotal.WithLabelValues(req.Type, "success").Inc()
	return resp.Value, nil
}

// decodeResponse parses a response document. A bulk answer with a single
// element is accepted as well.
func decodeResponse(raw []byte) (*response, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var bulk []response
		if err := json.Unmarshal(trimmed, &bulk); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "invalid agent response", err)
		}
		if len(bulk) != 1 {
			return nil, errors.Newf(errors.ErrCodeInternal, "expected one agent response, got %d", len(bulk))
		}
		return &bulk[0], nil
	}

	var resp response
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "invalid agent response", err)
	}
	return &resp, nil
}

// info converts the introspection document into the catalog model.
// Attributes and operations are sorted by name; for overloaded operations
// the first published signature is kept.
func (lb *listBean) info() (*bean.Info, error) {
	info := &bean.Info{
		ClassName:   lb.Class,
		Description: lb.Desc,
	}

	for name, a := range lb.Attr {
		info.Attributes = append(info.Attributes, bean.AttributeInfo{
			Name:        name,
			Type:        a.Type,
			Description: a.Desc,
			Writable:    a.RW,
		})
	}
	sort.Slice(info.Attributes, func(i, j int) bool {
		return info.Attributes[i].Name < info.Attributes[j].Name
	})

	for name, rawOp := range lb.Op {
		op, err := firstOverload(rawOp)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "invalid operation descriptor", err,
				map[string]any{"operation": name})
		}

		oi := bean.OperationInfo{
			Name:        name,
			Description: op.Desc,
			ReturnType:  op.Ret,
		}
		for _, a := range op.Args {
			oi.Parameters = append(oi.Parameters, bean.ParameterInfo{
				Name:        a.Name,
				Type:        a.Type,
				Description: a.Desc,
			})
		}
		info.Operations = append(info.Operations, oi)
	}
	sort.Slice(info.Operations, func(i, j int) bool {
		return info.Operations[i].Name < info.Operations[j].Name
	})

	return info, nil
}

func firstOverload(raw json.RawMessage) (listOperation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ops []listOperation
		if err := json.Unmarshal(trimmed, &ops); err != nil {
			return listOperation{}, err
		}
		if len(ops) == 0 {
			return listOperation{}, errors.New(errors.ErrCodeInternal, "empty overload list")
		}
		return ops[0], nil
	}

	var op listOperation
	err := json.Unmarshal(trimmed, &op)
	return op, err
}
