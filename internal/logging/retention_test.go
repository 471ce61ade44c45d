package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeAged(t *testing.T, path string, size int, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if age > 0 {
		past := time.Now().Add(-age)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
}

func TestPruneLogsRemovesExpiredRotations(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "foldersort.log")
	old := filepath.Join(dir, "foldersort-20200101-000000.log")
	recent := filepath.Join(dir, "foldersort-20990101-000000.log")
	other := filepath.Join(dir, "notes.log")
	writeAged(t, active, 1, 30*24*time.Hour)
	writeAged(t, old, 1, 10*24*time.Hour)
	writeAged(t, recent, 1, 0)
	writeAged(t, other, 1, 10*24*time.Hour)

	if removed := PruneLogs(NewNop(), active, 5); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old rotation removed, stat err=%v", err)
	}
	for _, path := range []string{active, recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestPruneLogsDisabled(t *testing.T) {
	if removed := PruneLogs(nil, filepath.Join(t.TempDir(), "foldersort.log"), 0); removed != 0 {
		t.Fatalf("expected no removals, got %d", removed)
	}
}

func TestRotateLog(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "foldersort.log")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	if rotated, err := rotateLog(active, 10, now); err != nil || rotated != "" {
		t.Fatalf("missing log: rotated=%q err=%v", rotated, err)
	}

	writeAged(t, active, 5, 0)
	if rotated, err := rotateLog(active, 10, now); err != nil || rotated != "" {
		t.Fatalf("small log: rotated=%q err=%v", rotated, err)
	}

	writeAged(t, active, 20, 0)
	rotated, err := rotateLog(active, 10, now)
	if err != nil {
		t.Fatalf("rotateLog: %v", err)
	}
	if rotated != filepath.Join(dir, "foldersort-20260304-050607.log") {
		t.Fatalf("unexpected rotated path %q", rotated)
	}
	if _, err := os.Stat(active); !os.IsNotExist(err) {
		t.Fatalf("expected active log moved aside, stat err=%v", err)
	}
	if matched, _ := filepath.Match(rotatedPattern(active), filepath.Base(rotated)); !matched {
		t.Fatalf("rotated name %q does not match pattern %q", rotated, rotatedPattern(active))
	}
}
