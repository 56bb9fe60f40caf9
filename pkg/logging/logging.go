// Package logging configures the process-wide slog logger.
//
// Two flavors are provided. The CLI logger writes compact text lines to
// stderr so that command results on stdout stay clean for piping. The
// structured logger writes JSON with service attributes and is selected with
// --log-json when beanctl runs under a log collector.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel is the environment variable naming the log level.
const EnvLogLevel = "LOG_LEVEL"

// ParseLogLevel converts a level name into a slog.Level.
// Unknown or empty names fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewCLILogger returns a text logger without timestamps writing to w.
func NewCLILogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// NewStructuredLogger returns a JSON logger tagged with the service name and version.
func NewStructuredLogger(w io.Writer, name, version string, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})).With(
		slog.String("module", name),
		slog.String("version", version),
	)
}

// SetDefaultCLILogger installs the text logger on stderr as the default.
func SetDefaultCLILogger(level slog.Level) {
	slog.SetDefault(NewCLILogger(os.Stderr, level))
}

// SetDefaultStructuredLoggerWithLevel installs the JSON logger with an explicit level.
func SetDefaultStructuredLoggerWithLevel(name, version string, level slog.Level) {
	slog.SetDefault(NewStructuredLogger(os.Stderr, name, version, level))
}
