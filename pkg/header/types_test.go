package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New(
		WithMetadata("agent", "http://localhost:8778/jolokia"),
		WithKind("BeanResults"),
	)

	assert.Equal(t, "BeanResults", h.Kind)
	assert.Equal(t, "beanresults.beanctl.nvidia.com/v1", h.APIVersion)
	assert.Equal(t, "http://localhost:8778/jolokia", h.Metadata["agent"], "metadata set before the kind is kept")

	ts, err := time.Parse(time.RFC3339, h.Metadata[MetadataTimestamp])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestWithAPIVersion(t *testing.T) {
	h := New(WithKind("BeanList"), WithAPIVersion("custom/v2"))
	assert.Equal(t, "custom/v2", h.APIVersion)

	empty := New()
	assert.Empty(t, empty.Kind)
	assert.NotNil(t, empty.Metadata)
}
