/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/beanctl/pkg/config"
	"github.com/NVIDIA/beanctl/pkg/errors"
	"github.com/NVIDIA/beanctl/pkg/logging"
)

const name = "beanctl"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitCanceled = 2
)

type configKey struct{}

// Execute runs beanctl with the process arguments and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := newRootCmd(os.Stdout, os.Stderr)
	err := cmd.Run(ctx, normalizeArgs(cmd, os.Args))
	stop()

	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Query and manage JVM management beans through a Jolokia agent",
		ArgsUsage:             "USER:PASS|- HOST:PORT [BEAN] [COMMAND...]",
		Description: `Connects to the agent at HOST:PORT and, depending on the arguments:
  - with no BEAN, lists every registered bean name
  - with a BEAN pattern matching several beans, lists their names
  - with a single BEAN and no COMMAND, lists its attributes and operations
  - otherwise runs each COMMAND against the bean in order

A COMMAND is an attribute or operation name, optionally followed by
"=" and comma-separated arguments:

  beanctl - localhost:8778 java.lang:type=Memory HeapMemoryUsage
  beanctl admin:secret crawler:8778 org.archive.crawler:name=Heritrix,type=Service \
      Status schedule=http://example.org/ Threads=50

Pass "-" instead of USER:PASS when the agent needs no credentials.
HOST:PORT is omitted when --url or --pod selects the agent, and
USER:PASS is omitted when BEANCTL_CREDENTIALS or the config file sets it.`,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(),
		Before:    setup,
		After:     writeMetrics,
		Commands: []*cli.Command{
			listCmd(),
			infoCmd(),
			versionCmd(),
		},
		Action: runBatch,
	}
}

// setup loads the configuration and installs the logger.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := loadConfig(cmd, os.LookupEnv)
	if err != nil {
		return ctx, err
	}

	level := logging.ParseLogLevel(cfg.LogLevel)
	if cfg.LogJSON {
		logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	} else {
		logging.SetDefaultCLILogger(level)
	}
	slog.Debug("configuration loaded", "format", cfg.Format, "path", cfg.Path, "timeout", cfg.Timeout)

	return context.WithValue(ctx, configKey{}, cfg), nil
}

func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// writeMetrics dumps the process metrics for the node-exporter textfile
// collector when --metrics-file is set.
func writeMetrics(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("metrics-file")
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg.MetricsFile != "" {
		path = cfg.MetricsFile
	}
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	slog.Debug("metrics written", "path", path)
	return nil
}

// normalizeArgs inserts "--" before the first lone "-" argument that is not
// a flag value. Without it the flag parser stops at "-" and drops the
// arguments that follow.
func normalizeArgs(cmd *cli.Command, args []string) []string {
	valueFlags := make(map[string]bool)
	for _, f := range cmd.Flags {
		if _, ok := f.(*cli.BoolFlag); ok {
			continue
		}
		for _, n := range f.Names() {
			valueFlags[n] = true
		}
	}

	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return args
		case arg == "-":
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		case strings.HasPrefix(arg, "-") && !strings.Contains(arg, "="):
			if valueFlags[strings.TrimLeft(arg, "-")] {
				i++
			}
		}
	}
	return args
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled),
		stderrors.Is(err, context.DeadlineExceeded),
		errors.Is(err, errors.ErrCodeTimeout):
		return ExitCanceled
	default:
		return ExitError
	}
}

// reportError prints err and its structured context, if any.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var se *errors.StructuredError
	if !stderrors.As(err, &se) || len(se.Context) == 0 {
		return
	}
	for _, k := range slices.Sorted(maps.Keys(se.Context)) {
		fmt.Fprintf(w, "  %s: %v\n", k, se.Context[k])
	}
}
