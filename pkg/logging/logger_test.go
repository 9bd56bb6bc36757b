package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aerolink/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "aerolink.log")

	cfg := &config.LogConfig{
		Level: "DEBUG",
		Path:  logPath,
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	slog.Info("hello from test", "k", "v")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Error("log file missing the written line")
	}
	if !strings.Contains(Capture.Last(), "hello from test") {
		t.Error("capture writer missing the written line")
	}
}

func TestTailWriterRetainsRecentLines(t *testing.T) {
	w := NewTailWriter(3)
	if got := w.Last(); got != "" {
		t.Errorf("Last on empty writer = %q, want empty", got)
	}
	for _, line := range []string{"one\n", "two\n", "three\n", "four\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if got := w.Last(); got != "four" {
		t.Errorf("Last = %q, want %q", got, "four")
	}
	got := w.Lines()
	want := []string{"two", "three", "four"}
	if len(got) != len(want) {
		t.Fatalf("Lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Lines[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInitRotatesExistingFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "aerolink.log")
	if err := os.WriteFile(logPath, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := Init(&config.LogConfig{Level: "INFO", Path: logPath})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	old, err := os.ReadFile(logPath + ".old")
	if err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	if !strings.Contains(string(old), "previous run") {
		t.Error("rotated file lost previous content")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
