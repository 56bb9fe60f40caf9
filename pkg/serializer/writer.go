package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	// FormatText is the human-readable rendering of the original client.
	FormatText Format = "text"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
)

// SupportedFormats returns the names of all formats.
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return false
	}
	return true
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format %q, supported: %s", s, strings.Join(SupportedFormats(), ", "))
	}
	return f, nil
}

// FormatFromPath picks a structured format from a file extension, or
// returns def.
func FormatFromPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return def
}

// TextRenderer is implemented by values with their own text rendering.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Serializer writes values in some format.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by serializers that own their output.
type Closer interface {
	Close() error
}

// Writer serializes values to an io.Writer.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
	once   sync.Once
}

// NewWriter creates a Writer for format on w. Unknown formats fall back to
// JSON.
func NewWriter(format Format, w io.Writer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: w}
}

// NewStdoutWriter creates a Writer on stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout creates a Writer on the file at path, or on stdout
// when path is empty or StdoutURI. The file is created or truncated.
func NewFileWriterOrStdout(format Format, path string) (Serializer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Format returns the writer's format.
func (w *Writer) Format() Format {
	return w.format
}

// Serialize writes v. In text format, values implementing TextRenderer
// render themselves, strings are written as-is and anything else is
// written as YAML.
func (w *Writer) Serialize(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch w.format {
	case FormatText:
		return w.serializeText(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w.output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

func (w *Writer) serializeText(v any) error {
	switch t := v.(type) {
	case TextRenderer:
		return t.RenderText(w.output)
	case string:
		_, err := io.WriteString(w.output, t)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w.output, t.String())
		return err
	default:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to text: %w", err)
		}
		return enc.Close()
	}
}

// Close closes the underlying file, if the writer owns one. It is safe to
// call more than once.
func (w *Writer) Close() error {
	var err error
	w.once.Do(func() {
		if w.closer != nil {
			err = w.closer.Close()
		}
	})
	return err
}
