package agent

import (
	"encoding/json"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/errors"
)

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "java.lang", escapePath("java.lang"))
	assert.Equal(t, "name=a!/b", escapePath("name=a/b"))
	assert.Equal(t, "name=x!!!/y", escapePath("name=x!/y"))
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "stop", operationName("stop", nil))
	assert.Equal(t, "stop()", operationName("stop", []string{}))
	assert.Equal(t, "setLevel(java.lang.String,java.lang.String)",
		operationName("setLevel", []string{"java.lang.String", "java.lang.String"}))
}

func TestWireValue(t *testing.T) {
	u, err := url.Parse("http://x.org/a")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "url", in: u, want: `"http://x.org/a"`},
		{name: "date", in: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), want: `"2024-01-02T03:04:05Z"`},
		{name: "nan", in: math.NaN(), want: `"NaN"`},
		{name: "infinity", in: float32(math.Inf(-1)), want: `"-Infinity"`},
		{name: "int", in: int32(42), want: `42`},
		{name: "big integer", in: big.NewInt(7), want: `7`},
		{name: "decimal", in: json.Number("3.14"), want: `3.14`},
		{name: "object name", in: bean.MustParseObjectName("java.lang:type=Memory"), want: `"java.lang:type=Memory"`},
		{name: "char", in: "x", want: `"x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(wireValue(tt.in))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestRemoteError(t *testing.T) {
	tests := []struct {
		status    int
		errorType string
		want      errors.ErrorCode
	}{
		{404, "javax.management.InstanceNotFoundException", errors.ErrCodeRemoteNotFound},
		{404, "javax.management.AttributeNotFoundException", errors.ErrCodeRemoteNotFound},
		{404, "java.lang.NoSuchMethodException", errors.ErrCodeRemoteNotFound},
		{400, "javax.management.OperationsException", errors.ErrCodeRemoteNotFound},
		{400, "javax.management.InvalidAttributeValueException", errors.ErrCodeRemoteTypeMismatch},
		{400, "java.lang.IllegalArgumentException", errors.ErrCodeRemoteTypeMismatch},
		{400, "java.lang.ClassCastException", errors.ErrCodeRemoteTypeMismatch},
		{400, "java.lang.NumberFormatException", errors.ErrCodeRemoteTypeMismatch},
		{500, "javax.management.MBeanException", errors.ErrCodeRemoteInvocation},
		{500, "javax.management.RuntimeMBeanException", errors.ErrCodeRemoteInvocation},
		{500, "", errors.ErrCodeRemoteInvocation},
		{403, "java.lang.Exception", errors.ErrCodeUnauthorized},
		{404, "", errors.ErrCodeRemoteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			err := remoteError(tt.status, tt.errorType, "failed")
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(statusError("x", http.StatusUnauthorized)))
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(statusError("x", http.StatusBadGateway)))
}

func TestDecodeResponse(t *testing.T) {
	resp, err := decodeResponse([]byte(`[{"status":200,"value":1}]`))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.JSONEq(t, `1`, string(resp.Value))

	_, err = decodeResponse([]byte(`[]`))
	assert.Error(t, err)

	_, err = decodeResponse([]byte(`<html>`))
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
}

func TestListBeanInfo(t *testing.T) {
	var lb listBean
	require.NoError(t, json.Unmarshal([]byte(`{
		"class": "com.sleepycat.je.jmx.JEMonitor",
		"desc": "JE monitor",
		"attr": {"cacheSize": {"type": "long", "desc": "cache", "rw": true}},
		"op": {
			"getStats": [
				{"args": [], "ret": "java.lang.String", "desc": "first"},
				{"args": [{"name": "clear", "type": "boolean", "desc": ""}], "ret": "java.lang.String", "desc": "second"}
			],
			"cleanLog": {"args": [], "ret": "int", "desc": "clean"}
		}
	}`), &lb))

	info, err := lb.info()
	require.NoError(t, err)
	assert.Equal(t, "com.sleepycat.je.jmx.JEMonitor", info.ClassName)
	require.Len(t, info.Attributes, 1)
	assert.Equal(t, "cacheSize", info.Attributes[0].Name)

	require.Len(t, info.Operations, 2)
	assert.Equal(t, "cleanLog", info.Operations[0].Name)
	assert.Equal(t, "getStats", info.Operations[1].Name)
	assert.Equal(t, "first", info.Operations[1].Description)
	assert.Empty(t, info.Operations[1].Parameters)
}
