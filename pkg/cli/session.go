/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/beanctl/pkg/agent"
	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/config"
	"github.com/NVIDIA/beanctl/pkg/errors"
	k8sclient "github.com/NVIDIA/beanctl/pkg/k8s/client"
	"github.com/NVIDIA/beanctl/pkg/serializer"
)

// target is the agent selected by the leading positional arguments.
type target struct {
	username string
	password string
	hostPort string
	// rest holds the arguments after USER:PASS and HOST:PORT.
	rest []string
}

// parseTarget consumes USER:PASS (unless configured) and HOST:PORT (unless
// --url or --pod is set) from args.
func parseTarget(cfg *config.Config, args []string) (*target, error) {
	t := &target{}

	creds := cfg.Credentials
	if creds == "" {
		if len(args) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "missing USER:PASS argument (use - for none)")
		}
		creds, args = args[0], args[1:]
	}
	user, pass, err := parseCredentials(creds)
	if err != nil {
		return nil, err
	}
	t.username, t.password = user, pass

	if cfg.URL == "" && cfg.Pod == "" {
		if len(args) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "missing HOST:PORT argument")
		}
		if _, _, err := net.SplitHostPort(args[0]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid HOST:PORT "+args[0], err)
		}
		t.hostPort, args = args[0], args[1:]
	}

	t.rest = args
	return t, nil
}

// parseCredentials splits USER:PASS at the first colon. "-" means no
// credentials.
func parseCredentials(s string) (string, string, error) {
	if s == "-" {
		return "", "", nil
	}
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return "", "", errors.New(errors.ErrCodeInvalidRequest, "invalid credentials: want USER:PASS or -")
	}
	return s[:idx], s[idx+1:], nil
}

// parseBeanName parses the BEAN argument. The create and destroy
// pseudo-beans of the RMI client have no counterpart in the agent protocol.
func parseBeanName(s string) (bean.ObjectName, error) {
	if strings.HasPrefix(s, "this.") {
		return bean.ObjectName{}, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"creating and unregistering beans is not supported", nil, map[string]any{"bean": s})
	}
	return bean.ParseObjectName(s)
}

// newTransport builds the transport for the configured agent.
func newTransport(cfg *config.Config, t *target) (agent.Transport, error) {
	if cfg.Pod != "" {
		ref, err := agent.ParsePodRef(cfg.Pod)
		if err != nil {
			return nil, err
		}
		client, err := kubeClient(cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to create kubernetes client", err)
		}
		if t.username != "" {
			slog.Debug("agent credentials are not sent through the pod proxy", "pod", ref.String())
		}
		return agent.NewPodProxyTransport(client, ref, cfg.Path)
	}

	endpoint := cfg.URL
	if endpoint == "" {
		endpoint = agent.EndpointURL(t.hostPort, cfg.Path, cfg.TLS)
	}

	opts := []agent.HTTPOption{agent.WithUserAgent(name + "/" + version)}
	if t.username != "" {
		opts = append(opts, agent.WithBasicAuth(t.username, t.password))
	}
	if cfg.InsecureTLS {
		opts = append(opts, agent.WithTLSConfig(&tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, //nolint:gosec // --insecure-tls
		}))
	}
	return agent.NewHTTPTransport(endpoint, opts...)
}

func kubeClient(cfg *config.Config) (kubernetes.Interface, error) {
	if cfg.Kubeconfig == "" && cfg.KubeContext == "" {
		client, _, err := k8sclient.GetKubeClient()
		return client, err
	}
	client, _, err := k8sclient.BuildKubeClient(cfg.Kubeconfig, cfg.KubeContext)
	return client, err
}

// endpointer is implemented by transports that can describe their target.
type endpointer interface {
	Endpoint() string
}

// session is an open agent session plus what the commands need around it.
type session struct {
	*agent.Client
	endpoint string
	rest     []string
}

// openSession parses the target arguments and connects to the agent.
func openSession(ctx context.Context, cfg *config.Config, args []string) (*session, error) {
	t, err := parseTarget(cfg, args)
	if err != nil {
		return nil, err
	}

	tr, err := newTransport(cfg, t)
	if err != nil {
		return nil, err
	}

	endpoint := ""
	if e, ok := tr.(endpointer); ok {
		endpoint = e.Endpoint()
	}

	client, err := agent.Connect(ctx, tr, agent.WithRateLimit(cfg.RateLimit, cfg.RateLimitBurst))
	if err != nil {
		return nil, errors.WithContext(err, map[string]any{"agent": endpoint})
	}
	slog.Debug("connected to agent", "endpoint", endpoint)

	return &session{Client: client, endpoint: endpoint, rest: t.rest}, nil
}

func (s *session) close() {
	if err := s.Close(); err != nil {
		slog.Warn("failed to close agent session", "error", err)
	}
}

// withTimeout applies the configured invocation timeout.
func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(cfg.Timeout))
}

// newOutput returns the serializer for --output and --format. A file path
// with a .json or .yaml suffix picks the format when --format is not set.
func newOutput(cmd *cli.Command, cfg *config.Config) (serializer.Serializer, func(), error) {
	format, err := serializer.ParseFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	path := strings.TrimSpace(cmd.String("output"))
	if path == "" || path == serializer.StdoutURI {
		return serializer.NewWriter(format, cmd.Root().Writer), func() {}, nil
	}

	if !cmd.IsSet("format") {
		format = serializer.FormatFromPath(path, format)
	}
	ser, err := serializer.NewFileWriterOrStdout(format, path)
	if err != nil {
		return nil, nil, err
	}
	return ser, func() {
		if c, ok := ser.(serializer.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}, nil
}
