package agent_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/beanctl/pkg/agent"
	"github.com/NVIDIA/beanctl/pkg/agent/agenttest"
	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/errors"
)

const crawlerName = "org.archive.crawler:name=Heritrix,type=Service"

func crawlerBean() *agenttest.Bean {
	return &agenttest.Bean{
		Name:  crawlerName,
		Class: "org.archive.crawler.Heritrix",
		Desc:  "Heritrix crawler",
		Attributes: []*agenttest.Attribute{
			{Name: "Status", Type: "java.lang.String", Desc: "Crawler status", Value: "RUNNING"},
			{Name: "Level", Type: "java.lang.String", Desc: "Log level", Writable: true, Value: "INFO"},
		},
		Operations: []*agenttest.Operation{
			{
				Name: "schedule",
				Desc: "Schedule a URI",
				Ret:  "java.lang.String",
				Args: []agenttest.Argument{{Name: "uri", Type: "java.lang.String", Desc: "URI to crawl"}},
				Fn: func(args []any) (any, error) {
					return fmt.Sprintf("scheduled %v", args[0]), nil
				},
			},
			{
				Name: "schedule",
				Desc: "Schedule a URI with priority",
				Ret:  "java.lang.String",
				Args: []agenttest.Argument{
					{Name: "uri", Type: "java.lang.String"},
					{Name: "priority", Type: "int"},
				},
			},
			{Name: "stop", Desc: "Stop the crawler", Ret: "void"},
			{
				Name: "fail",
				Ret:  "void",
				Fn: func([]any) (any, error) {
					return nil, fmt.Errorf("boom")
				},
			},
		},
	}
}

func connect(t *testing.T, srv *agenttest.Server, opts ...agent.HTTPOption) *agent.Client {
	t.Helper()
	tr, err := agent.NewHTTPTransport(srv.URL+agent.DefaultPath, opts...)
	require.NoError(t, err)
	c, err := agent.Connect(context.Background(), tr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8778/jolokia", agent.EndpointURL("localhost:8778", "", false))
	assert.Equal(t, "https://host:443/jmx", agent.EndpointURL("host:443", "jmx", true))
}

func TestClient_Introspect(t *testing.T) {
	srv := agenttest.NewServer(t, crawlerBean())
	c := connect(t, srv)

	info, err := c.Introspect(context.Background(), bean.MustParseObjectName(crawlerName))
	require.NoError(t, err)

	assert.Equal(t, "org.archive.crawler.Heritrix", info.ClassName)
	require.Len(t, info.Attributes, 2)
	assert.Equal(t, "Level", info.Attributes[0].Name)
	assert.True(t, info.Attributes[0].Writable)
	assert.Equal(t, "Status", info.Attributes[1].Name)

	op, ok := info.Operation("schedule")
	require.True(t, ok)
	assert.Equal(t, []string{"java.lang.String"}, op.Signature(), "first overload wins")

	stop, ok := info.Operation("stop")
	require.True(t, ok)
	assert.True(t, stop.IsVoid())

	list := srv.RequestsOfType(agent.TypeList)
	require.Len(t, list, 1)
	assert.Equal(t, "org.archive.crawler/name=Heritrix,type=Service", list[0]["path"])
}

func TestClient_IntrospectUnknownBean(t *testing.T) {
	srv := agenttest.NewServer(t)
	c := connect(t, srv)

	_, err := c.Introspect(context.Background(), bean.MustParseObjectName("a:b=c"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRemoteNotFound, errors.CodeOf(err))
}

func TestClient_Attributes(t *testing.T) {
	srv := agenttest.NewServer(t, crawlerBean())
	c := connect(t, srv)
	ctx := context.Background()
	name := bean.MustParseObjectName(crawlerName)

	raw, err := c.GetAttribute(ctx, name, "Status")
	require.NoError(t, err)
	assert.JSONEq(t, `"RUNNING"`, string(raw))

	require.NoError(t, c.SetAttribute(ctx, name, "Level", "FINE"))
	assert.Equal(t, "FINE", srv.Attribute(crawlerName, "Level"))

	_, err = c.GetAttribute(ctx, name, "Missing")
	assert.Equal(t, errors.ErrCodeRemoteNotFound, errors.CodeOf(err))

	err = c.SetAttribute(ctx, name, "Status", "STOPPED")
	assert.Equal(t, errors.ErrCodeRemoteTypeMismatch, errors.CodeOf(err))
}

func TestClient_Invoke(t *testing.T) {
	srv := agenttest.NewServer(t, crawlerBean())
	c := connect(t, srv)
	ctx := context.Background()
	name := bean.MustParseObjectName(crawlerName)

	u, err := url.Parse("http://x.org")
	require.NoError(t, err)

	raw, err := c.Invoke(ctx, name, "schedule", []any{u}, []string{"java.lang.String"})
	require.NoError(t, err)
	assert.JSONEq(t, `"scheduled http://x.org"`, string(raw))

	execs := srv.RequestsOfType(agent.TypeExec)
	require.Len(t, execs, 1)
	assert.Equal(t, "schedule(java.lang.String)", execs[0]["operation"])
	assert.Equal(t, []any{"http://x.org"}, execs[0]["arguments"])

	raw, err = c.Invoke(ctx, name, "stop", nil, []string{})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(raw))

	_, err = c.Invoke(ctx, name, "fail", nil, []string{})
	assert.Equal(t, errors.ErrCodeRemoteInvocation, errors.CodeOf(err))

	_, err = c.Invoke(ctx, name, "missing", nil, nil)
	assert.Equal(t, errors.ErrCodeRemoteNotFound, errors.CodeOf(err))

	_, err = c.Invoke(ctx, name, "schedule", []any{"a", "b"}, []string{"java.lang.String"})
	assert.Equal(t, errors.ErrCodeRemoteTypeMismatch, errors.CodeOf(err))

	_, err = c.Invoke(ctx, name, "schedule", []any{"a"}, []string{"java.net.URL"})
	assert.Equal(t, errors.ErrCodeRemoteNotFound, errors.CodeOf(err), "no overload with that signature")
}

func TestClient_QueryNames(t *testing.T) {
	srv := agenttest.NewServer(t,
		crawlerBean(),
		&agenttest.Bean{Name: "java.lang:type=Memory"},
		&agenttest.Bean{Name: "java.lang:type=Runtime"},
	)
	c := connect(t, srv)
	ctx := context.Background()

	all, err := c.QueryNames(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "java.lang:type=Memory", all[0].String())

	pattern := bean.MustParseObjectName("java.lang:*")
	some, err := c.QueryNames(ctx, &pattern)
	require.NoError(t, err)
	assert.Len(t, some, 2)

	none := bean.MustParseObjectName("nope:type=X")
	empty, err := c.QueryNames(ctx, &none)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestConnect_Unauthorized(t *testing.T) {
	srv := agenttest.NewServer(t)
	srv.Username = "admin"
	srv.Password = "secret"

	tr, err := agent.NewHTTPTransport(srv.URL, agent.WithBasicAuth("admin", "wrong"))
	require.NoError(t, err)
	_, err = agent.Connect(context.Background(), tr)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(err))

	connect(t, srv, agent.WithBasicAuth("admin", "secret"))
}

func TestConnect_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	tr, err := agent.NewHTTPTransport(srv.URL)
	require.NoError(t, err)
	_, err = agent.Connect(context.Background(), tr)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))
}

func TestConnect_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tr, err := agent.NewHTTPTransport(srv.URL)
	require.NoError(t, err)
	_, err = agent.Connect(ctx, tr)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 200, "value": map[string]any{"agent": "2.0.0"}})
	}))
	defer srv.Close()

	tr, err := agent.NewHTTPTransport(srv.URL, agent.WithUserAgent("beanctl/test"))
	require.NoError(t, err)
	_, err = agent.Connect(context.Background(), tr)
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "beanctl/test", got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestHTTPTransport_ResponseLimit(t *testing.T) {
	body := `{"status":200,"value":{"agent":"2.0.0"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	tr, err := agent.NewHTTPTransport(srv.URL)
	require.NoError(t, err)

	t.Run("at limit", func(t *testing.T) {
		agent.SetMaxResponseBytes(tr, int64(len(body)))
		data, err := tr.RoundTrip(context.Background(), []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, body, string(data))
	})

	t.Run("over limit", func(t *testing.T) {
		agent.SetMaxResponseBytes(tr, int64(len(body)-1))
		_, err := tr.RoundTrip(context.Background(), []byte(`{}`))
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
		assert.Contains(t, err.Error(), "agent response exceeds limit")
	})
}

func TestClient_RateLimit(t *testing.T) {
	srv := agenttest.NewServer(t, crawlerBean())
	tr, err := agent.NewHTTPTransport(srv.URL)
	require.NoError(t, err)

	c := agent.NewClient(tr, agent.WithRateLimit(1, 1))
	defer c.Close()

	ctx := context.Background()
	_, err = c.Version(ctx)
	require.NoError(t, err)

	// The bucket is empty; a short deadline cannot be met.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = c.Version(short)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
}
