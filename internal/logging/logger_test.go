package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerLineShape(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	componentLogger := NewComponentLogger(logger, "organize")
	componentLogger.Info("resource relocated",
		Int("seq", 7),
		String("dest", "/out/0007_Video_Track_a.jpg"),
		String("note", "has spaces"),
	)

	line := strings.TrimSpace(buf.String())
	for _, want := range []string{
		" INFO organize: resource relocated",
		"seq=7",
		"dest=/out/0007_Video_Track_a.jpg",
		`note="has spaces"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("below threshold")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "below threshold") {
		t.Fatalf("info leaked through warn gate: %q", out)
	}
	if !strings.Contains(out, "WARN kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestFormatValueQuoting(t *testing.T) {
	if got := formatValue(slog.StringValue("plain")); got != "plain" {
		t.Fatalf("plain = %q", got)
	}
	if got := formatValue(slog.StringValue("a b")); got != `"a b"` {
		t.Fatalf("spaced = %q", got)
	}
	if got := formatValue(slog.StringValue("")); got != `""` {
		t.Fatalf("empty = %q", got)
	}
	if got := formatValue(slog.AnyValue(fmt.Errorf("copy failed"))); got != `"copy failed"` {
		t.Fatalf("error = %q", got)
	}
	if got := formatValue(slog.BoolValue(true)); got != "true" {
		t.Fatalf("bool = %q", got)
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "vpdkit.log")

	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"hello"`, `"level":"info"`, `"k":"v"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %q", out, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
