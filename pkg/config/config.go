// Package config holds beanctl's settings: defaults, the optional config
// file, and environment overrides. Command-line flags are applied on top by
// the cli package, giving the precedence flags > env > file > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/beanctl/pkg/agent"
	"github.com/NVIDIA/beanctl/pkg/defaults"
	"github.com/NVIDIA/beanctl/pkg/logging"
	"github.com/NVIDIA/beanctl/pkg/serializer"
)

// Environment variables read by ApplyEnv.
const (
	EnvURL         = "BEANCTL_URL"
	EnvCredentials = "BEANCTL_CREDENTIALS"
	EnvPath        = "BEANCTL_PATH"
	EnvFormat      = "BEANCTL_FORMAT"
	EnvTimeout     = "BEANCTL_TIMEOUT"
	EnvLogLevel    = logging.EnvLogLevel
	EnvKubeconfig  = "KUBECONFIG"
)

// Config is the complete set of settings for one invocation.
type Config struct {
	// URL is the full agent URL. When set it replaces HOST:PORT.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Path is the agent path used with HOST:PORT.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Credentials is USER:PASS, or "-" for none.
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	TLS         bool `json:"tls,omitempty" yaml:"tls,omitempty"`
	InsecureTLS bool `json:"insecureTLS,omitempty" yaml:"insecureTLS,omitempty"`

	// Pod is namespace/name[:port] of a pod running the agent.
	Pod         string `json:"pod,omitempty" yaml:"pod,omitempty"`
	Kubeconfig  string `json:"kubeconfig,omitempty" yaml:"kubeconfig,omitempty"`
	KubeContext string `json:"kubeContext,omitempty" yaml:"kubeContext,omitempty"`

	// Timeout bounds the whole invocation. Zero means no timeout.
	Timeout        Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RateLimit      float64  `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	RateLimitBurst int      `json:"rateLimitBurst,omitempty" yaml:"rateLimitBurst,omitempty"`

	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	LogLevel    string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogJSON     bool   `json:"logJSON,omitempty" yaml:"logJSON,omitempty"`
	MetricsFile string `json:"metricsFile,omitempty" yaml:"metricsFile,omitempty"`
}

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Path:           agent.DefaultPath,
		RateLimitBurst: defaults.RateLimitBurst,
		Format:         string(serializer.FormatText),
		LogLevel:       slog.LevelInfo.String(),
	}
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults. Files ending in .yaml or .yml are YAML; anything
// else is JSON, with comments and trailing commas allowed.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	slog.Debug("loaded config file", "path", path)
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. lookup is
// usually os.LookupEnv. Invalid values are ignored with a warning.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURL); ok && v != "" {
		c.URL = v
	}
	if v, ok := lookup(EnvCredentials); ok && v != "" {
		c.Credentials = v
	}
	if v, ok := lookup(EnvPath); ok && v != "" {
		c.Path = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Format = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Plain seconds are accepted too.
			secs, serr := strconv.Atoi(v)
			if serr != nil {
				slog.Warn("ignoring invalid timeout", "env", EnvTimeout, "value", v)
				d = time.Duration(c.Timeout)
			} else {
				d = time.Duration(secs) * time.Second
			}
		}
		c.Timeout = Duration(d)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvKubeconfig); ok && v != "" && c.Kubeconfig == "" {
		c.Kubeconfig = v
	}
}

// Validate checks settings that do not depend on positional arguments.
func (c *Config) Validate() error {
	if _, err := serializer.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.URL != "" && c.Pod != "" {
		return fmt.Errorf("url and pod are mutually exclusive")
	}
	return nil
}
