// Package metrics exposes per-run organizer statistics in the Prometheus
// text format, for the node_exporter textfile collector. Each CLI run owns
// a private registry, so the file always describes the most recent run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"foldersort/internal/ledger"
	"foldersort/internal/organizer"
)

// Collector counts organizer events. It implements organizer.EventSink.
type Collector struct {
	registry *prometheus.Registry

	moves         *prometheus.CounterVec
	restores      prometheus.Counter
	organized     prometheus.Gauge
	eligible      prometheus.Gauge
	batchDuration prometheus.Gauge
	batchFailed   prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New returns a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foldersort_files_moved_total",
			Help: "Files moved into a category folder, by category and rule (extension, fallback, archive).",
		}, []string{"category", "rule"}),
		restores: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foldersort_files_restored_total",
			Help: "Files moved back by undo.",
		}),
		organized: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foldersort_batch_organized_files",
			Help: "Files organized by the last batch.",
		}),
		eligible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foldersort_batch_eligible_files",
			Help: "Files eligible for the last batch.",
		}),
		batchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foldersort_batch_duration_seconds",
			Help: "Wall time of the last batch.",
		}),
		batchFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foldersort_batch_failed",
			Help: "1 when the last batch stopped on an error.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foldersort_last_run_timestamp_seconds",
			Help: "Unix time the metrics were last written.",
		}),
	}
	c.registry.MustRegister(c.moves, c.restores, c.organized, c.eligible, c.batchDuration, c.batchFailed, c.lastRun)
	return c
}

// Handle records one organizer event.
func (c *Collector) Handle(event organizer.Event) {
	switch event.Kind {
	case organizer.EventMoved, organizer.EventMovedCustomRule:
		c.moves.WithLabelValues(event.Category, string(moveRule(event))).Inc()
	case organizer.EventUndone:
		c.restores.Inc()
	}
}

// moveRule labels a move by the ledger rule that placed it. Events built
// without one fall back to what their kind implies.
func moveRule(event organizer.Event) ledger.Rule {
	switch {
	case event.Rule != "":
		return event.Rule
	case event.Kind == organizer.EventMovedCustomRule:
		return ledger.RuleArchive
	default:
		return ledger.RuleExtension
	}
}

// ObserveBatch records the summary of an Organize call.
func (c *Collector) ObserveBatch(result organizer.Result, err error) {
	c.organized.Set(float64(result.Organized))
	c.eligible.Set(float64(result.TotalEligible))
	c.batchDuration.Set(result.Duration.Seconds())
	if err != nil {
		c.batchFailed.Set(1)
	} else {
		c.batchFailed.Set(0)
	}
}

// WriteTextfile atomically writes the registry to path.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	c.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
