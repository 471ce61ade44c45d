package ledger

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spf13/afero"

	"foldersort/internal/fileutil"
	"foldersort/internal/logging"
	"foldersort/internal/services"
)

// Journal persists the batch held by a Ledger. *Store implements it.
type Journal interface {
	BeginBatch(ctx context.Context, id string, startedAt time.Time, directories []string) error
	AppendMove(ctx context.Context, batchID string, rec Record) error
	DeleteMove(ctx context.Context, batchID string, seq int) error
	ClearBatch(ctx context.Context) error
	LoadBatch(ctx context.Context) (Batch, bool, error)
}

// Ledger holds the moves of the most recent organize batch, in move order.
// Only one batch is retained: Begin discards whatever was there.
type Ledger struct {
	mu      sync.Mutex
	fs      afero.Fs
	journal Journal
	logger  *slog.Logger
	batch   Batch
}

// New returns an empty ledger. journal may be nil for an in-memory ledger.
func New(fsys afero.Fs, journal Journal, logger *slog.Logger) *Ledger {
	return &Ledger{
		fs:      fsys,
		journal: journal,
		logger:  logging.NewComponentLogger(logger, "ledger"),
	}
}

// Open returns a ledger primed with the batch stored in journal, if any.
func Open(ctx context.Context, fsys afero.Fs, journal Journal, logger *slog.Logger) (*Ledger, error) {
	l := New(fsys, journal, logger)
	if journal == nil {
		return l, nil
	}
	batch, ok, err := journal.LoadBatch(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "ledger", "load", "read journal", err)
	}
	if ok {
		l.batch = batch
	}
	return l, nil
}

// Begin clears the ledger and starts a new batch.
func (l *Ledger) Begin(ctx context.Context, batchID string, startedAt time.Time, directories []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dropped := len(l.batch.Records); dropped > 0 {
		logging.WithContext(ctx, l.logger).Debug("previous batch discarded",
			logging.String("previous_batch", l.batch.ID),
			logging.Int("moves", dropped),
		)
	}
	l.batch = Batch{
		ID:          batchID,
		StartedAt:   startedAt,
		Directories: slices.Clone(directories),
	}
	if l.journal == nil {
		return nil
	}
	if err := l.journal.BeginBatch(ctx, batchID, startedAt, directories); err != nil {
		return services.Wrap(services.ErrIO, "ledger", "begin", "write journal", err)
	}
	return nil
}

// Record appends rec, assigning its sequence number. The record is kept in
// memory even when persisting it fails so the move stays undoable in-process.
func (l *Ledger) Record(ctx context.Context, rec Record) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.Sequence = len(l.batch.Records) + 1
	if rec.MovedAt.IsZero() {
		rec.MovedAt = time.Now()
	}
	l.batch.Records = append(l.batch.Records, rec)
	if l.journal == nil {
		return rec, nil
	}
	if err := l.journal.AppendMove(ctx, l.batch.ID, rec); err != nil {
		return rec, services.Wrap(services.ErrIO, "ledger", "record", filepath.Base(rec.Source), err)
	}
	return rec, nil
}

// Records returns a copy of the pending records in move order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.batch.Records)
}

// Batch returns a copy of the pending batch.
func (l *Ledger) Batch() Batch {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.batch
	batch.Directories = slices.Clone(l.batch.Directories)
	batch.Records = slices.Clone(l.batch.Records)
	return batch
}

// Len returns the number of pending records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.batch.Records)
}

// UndoAll moves every recorded file back to its source, newest first, and
// calls onRestored for each file it moves. A record leaves the ledger once its
// journal row is deleted. A record whose file is already back at its source
// (destination gone, source present) is dropped without a move; this happens
// when an earlier undo restored the file but failed to update the journal.
// The first failure stops the replay; records not yet restored stay in the
// ledger. An empty ledger yields NothingToUndo without error.
func (l *Ledger) UndoAll(ctx context.Context, onRestored func(Record)) (UndoResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := logging.WithContext(services.WithBatchID(ctx, l.batch.ID), l.logger)
	if len(l.batch.Records) == 0 {
		logger.Info("nothing to undo", logging.String(logging.FieldEventType, "undo_empty"))
		return UndoResult{NothingToUndo: true}, nil
	}

	result := UndoResult{}
	for i := len(l.batch.Records) - 1; i >= 0; i-- {
		rec := l.batch.Records[i]
		moved, err := l.restore(rec)
		if err != nil {
			result.Remaining = i + 1
			logging.ErrorWithContext(logger, "undo stopped", "undo_failed",
				logging.File(filepath.Base(rec.Destination)),
				logging.Int("remaining", result.Remaining),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "resolve the conflict and run undo again"),
			)
			return result, err
		}
		if moved {
			result.Restored++
			logger.Debug("file restored",
				logging.String(logging.FieldEventType, "undo_restored"),
				logging.Path("source", rec.Source),
				logging.Path("destination", rec.Destination),
			)
			if onRestored != nil {
				onRestored(rec)
			}
		} else {
			result.Skipped++
			logger.Info("file already restored",
				logging.String(logging.FieldEventType, "undo_skipped"),
				logging.Path("source", rec.Source),
			)
		}
		if l.journal != nil {
			if err := l.journal.DeleteMove(ctx, l.batch.ID, rec.Sequence); err != nil {
				result.Remaining = i + 1
				logging.ErrorWithContext(logger, "undo stopped", "undo_journal_failed",
					logging.File(filepath.Base(rec.Source)),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "run undo again; restored files are skipped"),
					logging.String(logging.FieldImpact, "the journal still lists a move that was reverted"),
				)
				return result, services.Wrap(services.ErrIO, "ledger", "undo", "update journal", err)
			}
		}
		l.batch.Records = l.batch.Records[:i]
	}

	if l.journal != nil {
		if err := l.journal.ClearBatch(ctx); err != nil {
			return result, services.Wrap(services.ErrIO, "ledger", "undo", "clear journal", err)
		}
	}
	logger.Info("undo complete",
		logging.String(logging.FieldEventType, "undo_complete"),
		logging.Int("restored", result.Restored),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

// restore moves rec's file back. It reports false without error when the
// file is already at its source.
func (l *Ledger) restore(rec Record) (bool, error) {
	name := filepath.Base(rec.Destination)
	present, err := fileutil.Exists(l.fs, rec.Destination)
	if err != nil {
		return false, services.Wrap(services.ErrIO, "undo", "stat", name, err)
	}
	occupied, err := fileutil.Exists(l.fs, rec.Source)
	if err != nil {
		return false, services.Wrap(services.ErrIO, "undo", "stat", rec.Source, err)
	}
	switch {
	case !present && occupied:
		return false, nil
	case !present:
		return false, services.Wrap(services.ErrIO, "undo", "restore", name+" is no longer at "+rec.Destination, nil)
	case occupied:
		return false, services.Wrap(services.ErrDestinationExists, "undo", "restore", rec.Source+" is occupied", nil)
	}
	if err := fileutil.MoveFile(l.fs, rec.Destination, rec.Source); err != nil {
		return false, services.Wrap(services.ErrIO, "undo", "move", name, err)
	}
	return true, nil
}
