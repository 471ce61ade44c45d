package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foldersort/internal/config"
	"foldersort/internal/services"
)

func TestConsoleHandlerRendersComponentAndSubject(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithBatchID(context.Background(), "0123456789abcdef")
	ctx = services.WithDirectory(ctx, "/home/user/Downloads")
	logger = WithContext(ctx, NewComponentLogger(logger, "organizer"))
	logger.Info("file moved", String("file", "photo one.jpg"), Int("count", 2))

	out := buf.String()
	for _, want := range []string{"INFO", "[organizer]", "batch 01234567 (Downloads)", "file moved", `file="photo one.jpg"`, "count=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "batch_id=") {
		t.Fatalf("expected batch id folded into subject, got %q", out)
	}
}

func TestConsoleHandlerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestJSONHandlerUsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Error("move failed", Error(errors.New("disk full")))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v (%s)", err, buf.String())
	}
	if payload["level"] != "error" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["error"] != "disk full" {
		t.Fatalf("unexpected error field %v", payload["error"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewFromConfigWritesLogFileAndConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	var console bytes.Buffer
	logger, err := NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("organize complete", Int("organized", 3))

	data, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "organize complete") {
		t.Fatalf("expected record in log file, got %q", data)
	}
	if !strings.Contains(console.String(), "organized=3") {
		t.Fatalf("expected record on console, got %q", console.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	WarnWithContext(logger, "destination replaced", "destination_overwritten")
	out := buf.String()
	for _, want := range []string{"event_type=destination_overwritten", "error_hint=\"see foldersort.log for details\"", "impact=\"the run continued\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestConsoleHandlerShortensHomePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("file moved",
		Path("destination", filepath.Join(home, "Downloads", "Images", "a b.jpg")),
		File(filepath.Join(home, "untouched")),
	)
	out := buf.String()
	if !strings.Contains(out, `destination="~/Downloads/Images/a b.jpg"`) {
		t.Fatalf("expected shortened destination, got %q", out)
	}
	if !strings.Contains(out, "file="+home) {
		t.Fatalf("expected file attribute left alone, got %q", out)
	}
}

func TestConsoleHandlerKeepsDirectoryFieldAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithDirectory(context.Background(), "/srv/inbox")
	WithContext(ctx, logger).Debug("scan", Int("entries", 4))
	out := buf.String()
	if !strings.Contains(out, "(inbox)") || !strings.Contains(out, "directory=/srv/inbox") {
		t.Fatalf("expected subject and field at debug, got %q", out)
	}
}

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.log")
	for i := 0; i < 2; i++ {
		logger, err := New(Options{Level: "info", File: path})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		logger.Info("run")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Count(string(data), " - run") != 2 {
		t.Fatalf("expected two appended records, got %q", data)
	}
}
