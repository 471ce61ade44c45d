package main

import (
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"foldersort/internal/logging"
	"foldersort/internal/organizer"
)

// progressReporter drives the terminal bar and samples progress into the log.
type progressReporter struct {
	out     io.Writer
	show    bool
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func newProgressReporter(out io.Writer, show bool, logger *slog.Logger) *progressReporter {
	return &progressReporter{
		out:     out,
		show:    show && shouldColorize(out),
		sampler: logging.NewProgressSampler(10),
		logger:  logger,
	}
}

func (p *progressReporter) update(progress organizer.Progress) {
	if p.sampler.ShouldLog(progress.Done, progress.Total) && p.logger != nil {
		p.logger.Info("organize progress",
			logging.String(logging.FieldEventType, "organize_progress"),
			logging.Int("done", progress.Done),
			logging.Int("total", progress.Total),
		)
	}
	if !p.show {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(progress.Total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("organizing"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(progress.Done)
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
