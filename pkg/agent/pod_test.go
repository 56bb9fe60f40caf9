package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

func TestParsePodRef(t *testing.T) {
	tests := []struct {
		in      string
		want    PodRef
		wantErr bool
	}{
		{in: "monitoring/crawler-0", want: PodRef{Namespace: "monitoring", Name: "crawler-0", Port: DefaultAgentPort}},
		{in: "monitoring/crawler-0:9999", want: PodRef{Namespace: "monitoring", Name: "crawler-0", Port: 9999}},
		{in: "crawler-0", want: PodRef{Namespace: "default", Name: "crawler-0", Port: DefaultAgentPort}},
		{in: "ns/", wantErr: true},
		{in: "/pod", wantErr: true},
		{in: "ns/pod:http", wantErr: true},
		{in: "ns/pod:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePodRef(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newProxyClient(t *testing.T, handler http.HandlerFunc) kubernetes.Interface {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cs, err := kubernetes.NewForConfig(&rest.Config{Host: srv.URL})
	require.NoError(t, err)
	return cs
}

func TestPodProxyTransport(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	cs := newProxyClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"value":{"agent":"2.0.0","protocol":"7.3"}}`))
	})

	tr, err := NewPodProxyTransport(cs, PodRef{Namespace: "monitoring", Name: "crawler-0", Port: 8778}, "")
	require.NoError(t, err)
	assert.Equal(t, "pod/monitoring/crawler-0:8778/jolokia", tr.Endpoint())

	c, err := Connect(context.Background(), tr)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "/api/v1/namespaces/monitoring/pods/crawler-0:8778/proxy/jolokia", gotPath)
	assert.Equal(t, "version", gotBody["type"])
}

func TestPodProxyTransport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason string
		want   errors.ErrorCode
	}{
		{name: "forbidden", status: http.StatusForbidden, reason: "Forbidden", want: errors.ErrCodeUnauthorized},
		{name: "pod missing", status: http.StatusNotFound, reason: "NotFound", want: errors.ErrCodeUnavailable},
		{name: "no endpoints", status: http.StatusServiceUnavailable, reason: "ServiceUnavailable", want: errors.ErrCodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := newProxyClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprintf(w, `{"kind":"Status","apiVersion":"v1","status":"Failure","reason":%q,"code":%d}`,
					tt.reason, tt.status)
			})

			tr, err := NewPodProxyTransport(cs, PodRef{Namespace: "ns", Name: "pod", Port: 8778}, "/jolokia")
			require.NoError(t, err)

			_, err = tr.RoundTrip(context.Background(), []byte(`{"type":"version"}`))
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}

func TestNewPodProxyTransport_NilClient(t *testing.T) {
	_, err := NewPodProxyTransport(nil, PodRef{}, "")
	assert.Error(t, err)
}
