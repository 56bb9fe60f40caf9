package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{name: "attribute", raw: "Status", wantName: "Status"},
		{name: "single argument", raw: "schedule=http://x.org", wantName: "schedule", wantArgs: []string{"http://x.org"}},
		{name: "two arguments", raw: "setLevel=foo.bar,FINE", wantName: "setLevel", wantArgs: []string{"foo.bar", "FINE"}},
		{name: "three arguments", raw: "op=a,b,c", wantName: "op", wantArgs: []string{"a", "b", "c"}},
		{name: "trailing equals", raw: "gc=", wantName: "gc"},
		{name: "only commas", raw: "gc=,,", wantName: "gc"},
		{name: "interior empty kept", raw: "op=a,,b", wantName: "op", wantArgs: []string{"a", "", "b"}},
		{name: "trailing empty dropped", raw: "op=a,b,", wantName: "op", wantArgs: []string{"a", "b"}},
		{name: "spaces kept", raw: "op=hello world", wantName: "op", wantArgs: []string{"hello world"}},
		{name: "empty", raw: "", wantErr: true},
		{name: "leading equals", raw: "=value", wantErr: true},
		{name: "equals in argument", raw: "op=a=b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeMalformedCommand, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.raw, got.Raw)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, got.Args)
				assert.False(t, got.HasArgs())
				return
			}
			assert.Equal(t, tt.wantArgs, got.Args)
			assert.True(t, got.HasArgs())
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, args := range [][]string{{"a"}, {"a", "b"}, {"1", "2", "3", "4"}} {
		raw := "name="
		for i, a := range args {
			if i > 0 {
				raw += ","
			}
			raw += a
		}
		got, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "name", got.Name)
		assert.Equal(t, args, got.Args)
	}
}
