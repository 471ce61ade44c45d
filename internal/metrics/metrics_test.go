package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"foldersort/internal/ledger"
	"foldersort/internal/organizer"
)

var _ organizer.EventSink = (*Collector)(nil)

func readTextfile(t *testing.T, c *Collector) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textfile", "foldersort.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	return string(data)
}

func TestCollectorCountsEvents(t *testing.T) {
	c := New()
	c.Handle(organizer.Event{Kind: organizer.EventMoved, Category: "Images", Rule: ledger.RuleExtension})
	c.Handle(organizer.Event{Kind: organizer.EventMoved, Category: "Images"})
	c.Handle(organizer.Event{Kind: organizer.EventMoved, Category: "Others", Rule: ledger.RuleFallback})
	c.Handle(organizer.Event{Kind: organizer.EventMovedCustomRule, Category: "Archive", Rule: ledger.RuleArchive})
	c.Handle(organizer.Event{Kind: organizer.EventUndone, Category: "Images"})
	c.Handle(organizer.Event{Kind: organizer.EventInfo, Message: "ignored"})

	out := readTextfile(t, c)
	for _, want := range []string{
		`foldersort_files_moved_total{category="Images",rule="extension"} 2`,
		`foldersort_files_moved_total{category="Others",rule="fallback"} 1`,
		`foldersort_files_moved_total{category="Archive",rule="archive"} 1`,
		`foldersort_files_restored_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestObserveBatch(t *testing.T) {
	c := New()
	c.ObserveBatch(organizer.Result{Organized: 3, TotalEligible: 4, Duration: 1500 * time.Millisecond}, errors.New("disk full"))

	out := readTextfile(t, c)
	for _, want := range []string{
		"foldersort_batch_organized_files 3",
		"foldersort_batch_eligible_files 4",
		"foldersort_batch_duration_seconds 1.5",
		"foldersort_batch_failed 1",
		"foldersort_last_run_timestamp_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}
