package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const testName = "test"

type testConfig struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type rendered struct{ text string }

func (r rendered) RenderText(w io.Writer) error {
	_, err := io.WriteString(w, r.text)
	return err
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatJSON, &buf)

	data := []testConfig{{Name: "test1", Value: 123}, {Name: "test2", Value: 456}}
	if err := writer.Serialize(context.Background(), data); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var result []testConfig
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if len(result) != 2 || result[0].Name != "test1" || result[0].Value != 123 {
		t.Errorf("Unexpected data: %+v", result)
	}
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatYAML, &buf)

	data := []testConfig{{Name: "test1", Value: 123}}
	if err := writer.Serialize(context.Background(), data); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var result []testConfig
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal YAML: %v", err)
	}
	if len(result) != 1 || result[0].Value != 123 {
		t.Errorf("Unexpected data: %+v", result)
	}
}

func TestWriter_SerializeText(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{name: "renderer", data: rendered{text: "Status: RUNNING\n"}, want: "Status: RUNNING\n"},
		{name: "string", data: "java.lang:type=Memory\n", want: "java.lang:type=Memory\n"},
		{name: "struct falls back to yaml", data: testConfig{Name: testName, Value: 1}, want: "name: test\nvalue: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriter(FormatText, &buf).Serialize(context.Background(), tt.data); err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Serialize(ctx, testConfig{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(Format("invalid"), &buf)
	if writer.Format() != FormatJSON {
		t.Fatalf("expected json fallback, got %q", writer.Format())
	}

	if err := writer.Serialize(context.Background(), testConfig{Name: testName, Value: 123}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	var result testConfig
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal as JSON: %v", err)
	}
}

func TestWriter_Close(t *testing.T) {
	writer := NewStdoutWriter(FormatJSON)
	if err := writer.Close(); err != nil {
		t.Errorf("Close on stdout writer should not error: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("Multiple Close calls should not error: %v", err)
	}
}

func TestNewFileWriterOrStdout_EmptyPath(t *testing.T) {
	for _, path := range []string{"", "  ", "\t", "\n", "-"} {
		writer, err := NewFileWriterOrStdout(FormatJSON, path)
		if err != nil {
			t.Fatalf("Expected no error for empty path %q, got: %v", path, err)
		}
		if closer, ok := writer.(Closer); ok {
			if err := closer.Close(); err != nil {
				t.Errorf("Close failed for empty path writer: %v", err)
			}
		}
	}
}

func TestNewFileWriterOrStdout_Success(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "out.json")

	writer, err := NewFileWriterOrStdout(FormatJSON, tmpFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := writer.Serialize(context.Background(), testConfig{Name: testName, Value: 123}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if closer, ok := writer.(Closer); ok {
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	content, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	var result testConfig
	if err := json.Unmarshal(content, &result); err != nil {
		t.Fatalf("Failed to unmarshal file content: %v", err)
	}
	if result.Name != testName || result.Value != 123 {
		t.Errorf("Unexpected data in file: %+v", result)
	}
}

func TestNewFileWriterOrStdout_InvalidPath(t *testing.T) {
	writer, err := NewFileWriterOrStdout(FormatJSON, "/nonexistent/path/file.json")
	if err == nil {
		t.Fatal("Expected error for invalid path")
	}
	if writer != nil {
		t.Error("Expected nil writer when error is returned")
	}
	if !strings.Contains(err.Error(), "failed to create output file") {
		t.Errorf("Expected helpful error message, got: %v", err)
	}
}

func TestFormat_IsUnknown(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatText, false},
		{FormatJSON, false},
		{FormatYAML, false},
		{Format("table"), true},
		{Format(""), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.IsUnknown(); got != tt.want {
				t.Errorf("Format(%q).IsUnknown() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" YAML "); err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(YAML) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.json":  FormatJSON,
		"out.YAML":  FormatYAML,
		"out.yml":   FormatYAML,
		"out.txt":   FormatText,
		"no-suffix": FormatText,
	}
	for path, want := range tests {
		if got := FormatFromPath(path, FormatText); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) != 3 {
		t.Errorf("SupportedFormats() len = %d, want 3", len(formats))
	}
}
