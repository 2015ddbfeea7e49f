package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbsmedya/pagetable/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string // String representation of zapcore.Level
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"}, // empty defaults to info
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"}, // unknown defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		cfg  *config.LoggingConfig
	}{
		{
			name: "json format info level",
			cfg:  &config.LoggingConfig{Level: "info", Format: "json", Output: "stderr"},
		},
		{
			name: "text format debug level",
			cfg:  &config.LoggingConfig{Level: "debug", Format: "text", Output: "stdout"},
		},
		{
			name: "file output",
			cfg:  &config.LoggingConfig{Level: "warn", Format: "json", Output: filepath.Join(tmpDir, "test-log.json")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if logger == nil {
				t.Fatal("New() returned nil logger without error")
			}
			_ = logger.Sync()
		})
	}
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	if logger == nil {
		t.Fatal("NewDefault() returned nil")
	}

	// Should be able to log without panic
	logger.Debug("test message")
	_ = logger.Sync()
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.WithQuery("q").WithPage(1, 3).Info("discarded")
	_ = logger.Sync()
}

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &config.LoggingConfig{Level: level, Format: "json"}
	return NewWithWriter(cfg, &buf), &buf
}

func TestContextHelpers(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.WithComponent("controller").
		WithQuery("query-123").
		WithPage(2, 5).
		WithFields(map[string]interface{}{"custom_field": "value"}).
		Info("chained context")
	_ = logger.Sync()

	out := buf.String()
	for _, want := range []string{
		`"component":"controller"`,
		`"query":"query-123"`,
		`"page_index":2`,
		`"page_size":5`,
		`"custom_field":"value"`,
		`"msg":"chained context"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got: %s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, "warn")

	logger.Info("should be filtered")
	logger.Warn("should appear")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn message should be logged at warn level")
	}
}

func TestBuildEncoder(t *testing.T) {
	if buildEncoder("json") == nil {
		t.Error("buildEncoder('json') returned nil")
	}
	if buildEncoder("text") == nil {
		t.Error("buildEncoder('text') returned nil")
	}
	if buildEncoder("unknown") == nil {
		t.Error("buildEncoder('unknown') returned nil")
	}
}

func TestBuildWriters(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", ""} {
		if buildWriters(output) == nil {
			t.Errorf("buildWriters(%q) returned nil", output)
		}
	}

	tmpFile := filepath.Join(t.TempDir(), "test-logger-output.log")
	if buildWriters(tmpFile) == nil {
		t.Error("buildWriters(file) returned nil")
	}
}

func TestLoggingToFile(t *testing.T) {
	tmpFile, err := os.CreateTemp(t.TempDir(), "logger-test-*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	_ = tmpFile.Close()

	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: tmpFile.Name(),
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("test info message")
	logger.WithQuery("file-query").Warn("test warn message")
	_ = logger.Sync()

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "test info message") {
		t.Error("Log file should contain 'test info message'")
	}
	if !strings.Contains(contentStr, "file-query") {
		t.Error("Log file should contain query context 'file-query'")
	}
}
