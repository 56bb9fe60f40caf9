package header

import (
	"fmt"
	"strings"
	"time"
)

var (
	ApiVersionDomain = "beanctl.nvidia.com"
	ApiVersionV1     = "v1"
)

// Metadata keys set by Set.
const (
	MetadataTimestamp = "timestamp"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the Kind, e.g. "BeanResults" or "BeanList".
func WithKind(kind string) Option {
	return func(h *Header) {
		h.Set(kind)
	}
}

// WithAPIVersion overrides the APIVersion.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a Header with the provided options.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Header identifies a structured output document with Kubernetes-style
// Kind and APIVersion fields.
type Header struct {
	Kind       string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Set sets the kind, derives APIVersion as "<kind>.beanctl.nvidia.com/v1"
// and stamps the current time into the metadata. Existing metadata is kept.
func (h *Header) Set(kind string) {
	h.Kind = kind
	h.APIVersion = fmt.Sprintf("%s.%s/%s", strings.ToLower(kind), ApiVersionDomain, ApiVersionV1)
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	h.Metadata[MetadataTimestamp] = time.Now().UTC().Format(time.RFC3339)
}
