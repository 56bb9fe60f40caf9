/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/beanctl/pkg/agent"
	"github.com/NVIDIA/beanctl/pkg/config"
	"github.com/NVIDIA/beanctl/pkg/defaults"
	"github.com/NVIDIA/beanctl/pkg/serializer"
)

// globalFlags returns new flag instances; urfave flags keep their parsed
// state, so each command tree needs its own.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file path (YAML, or JSON with comments)",
			Sources: cli.EnvVars("BEANCTL_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "full agent URL, replaces the HOST:PORT argument",
		},
		&cli.StringFlag{
			Name:  "path",
			Value: agent.DefaultPath,
			Usage: "agent path used with HOST:PORT",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "connect to HOST:PORT over https",
		},
		&cli.BoolFlag{
			Name:  "insecure-tls",
			Usage: "skip TLS certificate verification",
		},
		&cli.StringFlag{
			Name:  "pod",
			Usage: "reach the agent through the Kubernetes pod proxy (namespace/name[:port])",
		},
		&cli.StringFlag{
			Name:    "kubeconfig",
			Aliases: []string{"k"},
			Usage:   "Path to kubeconfig file (overrides KUBECONFIG env and default ~/.kube/config)",
		},
		&cli.StringFlag{
			Name:  "kube-context",
			Usage: "kubeconfig context to use with --pod",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "bound on the whole invocation, 0 for none",
		},
		&cli.FloatFlag{
			Name:  "rate-limit",
			Usage: "maximum agent requests per second, 0 for unlimited",
		},
		&cli.IntFlag{
			Name:  "rate-limit-burst",
			Value: defaults.RateLimitBurst,
			Usage: "request burst allowed by --rate-limit",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Value:   string(serializer.FormatText),
			Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "log-json",
			Usage: "write logs as JSON",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write Prometheus metrics to this file on exit (textfile collector format)",
		},
	}
}

// loadConfig resolves settings with the precedence flags > env > file >
// defaults. Only flags set on the command line override.
func loadConfig(cmd *cli.Command, lookup func(string) (string, bool)) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(lookup)

	if cmd.IsSet("url") {
		cfg.URL = cmd.String("url")
	}
	if cmd.IsSet("path") {
		cfg.Path = cmd.String("path")
	}
	if cmd.IsSet("tls") {
		cfg.TLS = cmd.Bool("tls")
	}
	if cmd.IsSet("insecure-tls") {
		cfg.InsecureTLS = cmd.Bool("insecure-tls")
	}
	if cmd.IsSet("pod") {
		cfg.Pod = cmd.String("pod")
	}
	if cmd.IsSet("kubeconfig") {
		cfg.Kubeconfig = cmd.String("kubeconfig")
	}
	if cmd.IsSet("kube-context") {
		cfg.KubeContext = cmd.String("kube-context")
	}
	if cmd.IsSet("timeout") {
		cfg.Timeout = config.Duration(cmd.Duration("timeout"))
	}
	if cmd.IsSet("rate-limit") {
		cfg.RateLimit = cmd.Float("rate-limit")
	}
	if cmd.IsSet("rate-limit-burst") {
		cfg.RateLimitBurst = cmd.Int("rate-limit-burst")
	}
	if cmd.IsSet("format") {
		f, err := serializer.ParseFormat(cmd.String("format"))
		if err != nil {
			return nil, fmt.Errorf("invalid --format: %w", err)
		}
		cfg.Format = string(f)
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
	}
	if cmd.IsSet("log-json") {
		cfg.LogJSON = cmd.Bool("log-json")
	}
	if cmd.IsSet("metrics-file") {
		cfg.MetricsFile = cmd.String("metrics-file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
