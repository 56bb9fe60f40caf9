package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/beanctl/pkg/defaults"
	"github.com/NVIDIA/beanctl/pkg/errors"
)

// DefaultAgentPort is the port the agent listens on inside a pod.
const DefaultAgentPort = defaults.AgentPort

// PodRef addresses the agent port of a pod.
type PodRef struct {
	Namespace string
	Name      string
	Port      int
}

// String returns namespace/name:port.
func (p PodRef) String() string {
	return fmt.Sprintf("%s/%s:%d", p.Namespace, p.Name, p.Port)
}

// ParsePodRef parses "namespace/name[:port]". A missing namespace means
// "default"; a missing port means DefaultAgentPort.
func ParsePodRef(s string) (PodRef, error) {
	ref := PodRef{Namespace: defaults.PodNamespace, Port: DefaultAgentPort}

	rest := s
	if ns, name, ok := strings.Cut(s, "/"); ok {
		ref.Namespace = ns
		rest = name
	}
	if name, port, ok := strings.Cut(rest, ":"); ok {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return PodRef{}, errors.Newf(errors.ErrCodeInvalidRequest, "invalid pod port in %q", s)
		}
		ref.Port = p
		rest = name
	}
	ref.Name = rest

	if ref.Namespace == "" || ref.Name == "" {
		return PodRef{}, errors.Newf(errors.ErrCodeInvalidRequest, "invalid pod reference %q, expected namespace/name[:port]", s)
	}
	return ref, nil
}

// PodProxyTransport reaches the agent through the Kubernetes API server's
// pod proxy subresource. Authentication is the caller's kubeconfig identity;
// agent credentials are not forwarded.
type PodProxyTransport struct {
	client kubernetes.Interface
	pod    PodRef
	path   string
}

// NewPodProxyTransport creates a transport for the agent in pod, served
// under path.
func NewPodProxyTransport(client kubernetes.Interface, pod PodRef, path string) (*PodProxyTransport, error) {
	if client == nil {
		return nil, fmt.Errorf("kubernetes client is required")
	}
	if path == "" {
		path = DefaultPath
	}
	return &PodProxyTransport{client: client, pod: pod, path: path}, nil
}

// Endpoint returns a description of the proxied agent.
func (t *PodProxyTransport) Endpoint() string {
	return "pod/" + t.pod.String() + t.path
}

// RoundTrip POSTs body through the pod proxy.
func (t *PodProxyTransport) RoundTrip(ctx context.Context, body []byte) ([]byte, error) {
	start := time.Now()
	data, err := t.client.CoreV1().RESTClient().Post().
		Namespace(t.pod.Namespace).
		Resource("pods").
		Name(fmt.Sprintf("%s:%d", t.pod.Name, t.pod.Port)).
		SubResource("proxy").
		Suffix(t.path).
		SetHeader("Content-Type", "application/json").
		Body(body).
		DoRaw(ctx)

	slog.Debug("agent pod proxy round trip",
		"pod", t.pod.String(),
		"bytes", len(data),
		"duration", time.Since(start))

	if err == nil {
		return data, nil
	}

	endpoint := t.Endpoint()
	if apierrors.IsUnauthorized(err) || apierrors.IsForbidden(err) {
		return nil, errors.WrapWithContext(errors.ErrCodeUnauthorized, "pod proxy access denied", err,
			map[string]any{"endpoint": endpoint})
	}
	return nil, transportError(endpoint, err)
}

// Close is a no-op; the Kubernetes client owns its connections.
func (t *PodProxyTransport) Close() error {
	return nil
}
