// Package agent implements a management session against a Jolokia agent,
// the HTTP/JSON bridge that exposes a JVM's beans.
//
// A Session reads and writes attributes, invokes operations, searches for
// bean names and fetches a bean's introspection (its attribute and operation
// catalog). Requests are single JSON documents POSTed to the agent; the
// agent answers with {"value": ..., "status": 200} or an error document
// carrying the remote exception class in "error_type".
//
// Two transports are provided:
//
//   - HTTPTransport talks to the agent directly, with optional basic
//     authentication and TLS.
//   - PodProxyTransport reaches an agent running inside a Kubernetes pod
//     through the API server's pod proxy, using the caller's kubeconfig.
//
// Usage:
//
//	t, err := agent.NewHTTPTransport(agent.EndpointURL("localhost:8778", "/jolokia", false),
//	    agent.WithBasicAuth("admin", "secret"))
//	if err != nil {
//	    return err
//	}
//	client, err := agent.Connect(ctx, t)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	raw, err := client.GetAttribute(ctx, bean.MustParseObjectName("java.lang:type=Memory"), "HeapMemoryUsage")
//
// Remote failures are reported as *errors.StructuredError with one of the
// codes ErrCodeRemoteNotFound, ErrCodeRemoteTypeMismatch or
// ErrCodeRemoteInvocation. Transport failures use ErrCodeUnavailable,
// ErrCodeUnauthorized or ErrCodeTimeout.
//
// Every request is timed and counted in the beanctl_agent_request_*
// Prometheus metrics. An optional token-bucket limiter paces requests; it
// never drops or retries them.
package agent
