package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/beanctl/pkg/defaults"
)

const (
	// DefaultPath is the path the agent is served under.
	DefaultPath = defaults.AgentPath

	maxResponseBytes = defaults.MaxResponseBytes

	headerRequestID = "X-Request-ID"
)

// Transport carries one encoded request to the agent and returns the raw
// response document.
type Transport interface {
	RoundTrip(ctx context.Context, body []byte) ([]byte, error)
	Close() error
}

// EndpointURL builds the agent URL for host:port and path.
func EndpointURL(hostPort, path string, useTLS bool) string {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + hostPort + path
}

// HTTPTransport sends requests to the agent over HTTP(S).
type HTTPTransport struct {
	endpoint  string
	username  string
	password  string
	userAgent string
	client    *http.Client
	maxBytes  int64
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithBasicAuth sets the credentials sent with every request.
func WithBasicAuth(username, password string) HTTPOption {
	return func(t *HTTPTransport) {
		t.username = username
		t.password = password
	}
}

// WithTLSConfig sets the TLS configuration of the underlying client.
func WithTLSConfig(cfg *tls.Config) HTTPOption {
	return func(t *HTTPTransport) {
		if tr, ok := t.client.Transport.(*http.Transport); ok {
			tr.TLSClientConfig = cfg
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

// NewHTTPTransport creates a transport for the agent at endpoint.
func NewHTTPTransport(endpoint string, opts ...HTTPOption) (*HTTPTransport, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("agent endpoint is required")
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected default transport type %T", http.DefaultTransport)
	}

	t := &HTTPTransport{
		endpoint:  endpoint,
		userAgent: "beanctl",
		client: &http.Client{
			Transport: base.Clone(),
		},
		maxBytes: maxResponseBytes,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Endpoint returns the agent URL.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// RoundTrip POSTs body to the agent and returns the response body.
func (t *HTTPTransport) RoundTrip(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, transportError(t.endpoint, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set(headerRequestID, requestID)
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, transportError(t.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return nil, transportError(t.endpoint, err)
	}
	if int64(len(data)) > t.maxBytes {
		return nil, oversizeError(t.endpoint, t.maxBytes)
	}

	slog.Debug("agent round trip",
		"requestID", requestID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The agent may still answer with an error document.
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden && looksLikeJSON(data) {
			return data, nil
		}
		return nil, statusError(t.endpoint, resp.StatusCode)
	}

	return data, nil
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
