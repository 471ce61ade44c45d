package organizer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"

	"foldersort/internal/categories"
	"foldersort/internal/fileutil"
	"foldersort/internal/ledger"
	"foldersort/internal/logging"
	"foldersort/internal/services"
)

// Result summarizes an Organize call. When Organize fails, the counts cover
// the moves completed before the failure.
type Result struct {
	BatchID       string         `json:"batch_id"`
	Organized     int            `json:"organized"`
	TotalEligible int            `json:"total_eligible"`
	PerCategory   map[string]int `json:"per_category"`
	Duration      time.Duration  `json:"duration"`
}

// Engine classifies and moves files. It is not safe for concurrent Organize
// calls; the ledger it records into holds a single batch.
type Engine struct {
	fs     afero.Fs
	table  *categories.Table
	ledger *ledger.Ledger
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source used for the archive rule and records.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides batch id generation.
func WithIDGenerator(next func() string) EngineOption {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}

// NewEngine wires an engine to its filesystem, category table, and ledger.
// table may be nil for an engine that only undoes.
func NewEngine(fsys afero.Fs, table *categories.Table, l *ledger.Ledger, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		fs:     fsys,
		table:  table,
		ledger: l,
		logger: logging.NewComponentLogger(logger, "organizer"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type directoryPlan struct {
	dir   string
	files []string
}

// Organize sorts the immediate files of every directory in opts into category
// folders. The ledger is cleared first and receives one record per move. Any
// filesystem failure stops the batch; moves already made stay recorded and
// can be undone.
func (e *Engine) Organize(ctx context.Context, opts Options, progress ProgressFunc, sink EventSink) (Result, error) {
	if e.table == nil {
		return Result{}, services.Wrap(services.ErrValidation, "organize", "categories", "no category table loaded", nil)
	}
	started := e.now()
	opts, err := opts.normalized(e.fs)
	if err != nil {
		return Result{}, err
	}

	batchID := opts.BatchID
	if batchID == "" {
		batchID = e.newID()
	}
	ctx = services.WithOperation(services.WithBatchID(ctx, batchID), "organize")
	logger := logging.WithContext(ctx, e.logger)

	result := Result{BatchID: batchID, PerCategory: make(map[string]int)}
	finish := func(err error) (Result, error) {
		result.Duration = e.now().Sub(started)
		return result, err
	}

	if err := e.ledger.Begin(ctx, batchID, started, opts.Directories); err != nil {
		return finish(err)
	}

	plans, err := e.scan(opts)
	if err != nil {
		return finish(err)
	}
	for _, plan := range plans {
		result.TotalEligible += len(plan.files)
	}

	logger.Info("organize started",
		logging.String(logging.FieldEventType, "organize_started"),
		logging.Int("directories", len(plans)),
		logging.Int("eligible", result.TotalEligible),
		logging.Bool("handle_duplicates", opts.HandleDuplicates),
		logging.Bool("custom_rules", opts.ApplyCustomRules),
		logging.Bool("rename", opts.RenamePattern != ""),
		logging.Bool("search", opts.SearchQuery != ""),
	)

	for _, plan := range plans {
		if err := e.prepareFolders(plan.dir); err != nil {
			return finish(err)
		}
	}

	done := 0
	for _, plan := range plans {
		dirCtx := services.WithDirectory(ctx, plan.dir)
		for _, name := range plan.files {
			if err := e.organizeFile(dirCtx, opts, plan.dir, name, &result, sink); err != nil {
				logging.ErrorWithContext(logging.WithContext(dirCtx, e.logger), "organize stopped", "organize_failed",
					logging.String("file", name),
					logging.Int("organized", result.Organized),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "run undo to revert the completed moves"),
				)
				return finish(err)
			}
			done++
			if progress != nil {
				progress(Progress{Done: done, Total: result.TotalEligible})
			}
		}
	}

	logger.Info("organize complete",
		logging.String(logging.FieldEventType, "organize_complete"),
		logging.Int("organized", result.Organized),
		logging.Int("eligible", result.TotalEligible),
		logging.Duration("elapsed", e.now().Sub(started)),
	)
	return finish(nil)
}

// Undo reverts the ledger's batch, newest move first, emitting one Undone
// event per restored file. An empty ledger emits a single Info event.
func (e *Engine) Undo(ctx context.Context, sink EventSink) (ledger.UndoResult, error) {
	ctx = services.WithOperation(ctx, "undo")
	res, err := e.ledger.UndoAll(ctx, func(rec ledger.Record) {
		if sink == nil {
			return
		}
		sink.Handle(Event{
			Kind:        EventUndone,
			Filename:    filepath.Base(rec.Destination),
			Category:    rec.Category,
			Rule:        rec.Rule,
			Source:      rec.Source,
			Destination: rec.Destination,
		})
	})
	if res.NothingToUndo && sink != nil {
		sink.Handle(Event{Kind: EventInfo, Message: "No actions to undo."})
	}
	return res, err
}

// scan lists the eligible files of each directory: regular entries (symlinks
// are followed when deciding) whose names pass the search filter.
func (e *Engine) scan(opts Options) ([]directoryPlan, error) {
	var matches func(string) bool
	if opts.SearchQuery != "" {
		folder := cases.Fold()
		query := folder.String(opts.SearchQuery)
		matches = func(name string) bool {
			return strings.Contains(folder.String(name), query)
		}
	}

	plans := make([]directoryPlan, 0, len(opts.Directories))
	for _, dir := range opts.Directories {
		entries, err := afero.ReadDir(e.fs, dir)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "organize", "list", dir, err)
		}
		plan := directoryPlan{dir: dir}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				continue
			}
			if entry.Mode()&fs.ModeSymlink != 0 {
				isDir, err := fileutil.IsDir(e.fs, filepath.Join(dir, name))
				if err != nil {
					return nil, services.Wrap(services.ErrIO, "organize", "stat", name, err)
				}
				if isDir {
					continue
				}
			}
			if matches != nil && !matches(name) {
				continue
			}
			plan.files = append(plan.files, name)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (e *Engine) prepareFolders(dir string) error {
	for _, name := range e.table.Names() {
		target := filepath.Join(dir, name)
		if err := e.fs.MkdirAll(target, 0o755); err != nil {
			return services.Wrap(services.ErrIO, "organize", "create folder", target, err)
		}
	}
	return nil
}

func (e *Engine) organizeFile(ctx context.Context, opts Options, dir, name string, result *Result, sink EventSink) error {
	src := filepath.Join(dir, name)

	if opts.ApplyCustomRules {
		info, err := e.fs.Stat(src)
		if err != nil {
			return services.Wrap(services.ErrIO, "organize", "stat", name, err)
		}
		if age := e.now().Sub(info.ModTime()); age > opts.ArchiveAfter {
			archiveDir := filepath.Join(dir, opts.ArchiveFolder)
			if err := e.fs.MkdirAll(archiveDir, 0o755); err != nil {
				return services.Wrap(services.ErrIO, "organize", "create folder", archiveDir, err)
			}
			dest, err := e.resolveDestination(ctx, opts, filepath.Join(archiveDir, name))
			if err != nil {
				return err
			}
			return e.move(ctx, src, dest, opts.ArchiveFolder, ledger.RuleArchive, EventMovedCustomRule, result, sink)
		}
	}

	_, ext := fileutil.SplitExt(name)
	category, matched := e.table.Match(ext)
	rule := ledger.RuleExtension
	if !matched {
		category = categories.Others
		rule = ledger.RuleFallback
	}

	destName := name
	if matched && opts.RenamePattern != "" {
		destName = fmt.Sprintf("%s_%d%s", opts.RenamePattern, result.Organized+1, ext)
	}
	dest, err := e.resolveDestination(ctx, opts, filepath.Join(dir, category, destName))
	if err != nil {
		return err
	}
	return e.move(ctx, src, dest, category, rule, EventMoved, result, sink)
}

// resolveDestination applies duplicate handling or the collision policy to a
// candidate destination.
func (e *Engine) resolveDestination(ctx context.Context, opts Options, dest string) (string, error) {
	exists, err := fileutil.Exists(e.fs, dest)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "organize", "stat", dest, err)
	}
	if !exists {
		return dest, nil
	}
	if opts.HandleDuplicates {
		unique, err := fileutil.UniquePath(e.fs, dest)
		if err != nil {
			return "", services.Wrap(services.ErrIO, "organize", "unique name", dest, err)
		}
		return unique, nil
	}
	if opts.Collision == CollisionFail {
		return "", services.Wrap(services.ErrDestinationExists, "organize", "move", dest, nil)
	}
	logging.WarnWithContext(logging.WithContext(ctx, e.logger), "destination replaced", "destination_overwritten",
		logging.String("destination", dest),
		logging.String(logging.FieldErrorHint, "enable duplicate handling to keep both files"),
		logging.String(logging.FieldImpact, "the previous file at the destination is lost"),
	)
	return dest, nil
}

func (e *Engine) move(ctx context.Context, src, dest, category string, rule ledger.Rule, kind EventKind, result *Result, sink EventSink) error {
	name := filepath.Base(src)
	if err := fileutil.MoveFile(e.fs, src, dest); err != nil {
		return services.Wrap(services.ErrIO, "organize", "move", name, err)
	}
	rec, err := e.ledger.Record(ctx, ledger.Record{
		Source:      src,
		Destination: dest,
		Category:    category,
		Rule:        rule,
		MovedAt:     e.now(),
	})
	result.Organized++
	result.PerCategory[category]++
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, e.logger), "move not journaled", "move_unjournaled",
			logging.File(name),
			logging.Path("source", src),
			logging.Path("destination", dest),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "move the file back by hand if needed"),
			logging.String(logging.FieldImpact, "this move is not in the undo journal and a later undo will not revert it"),
		)
	}

	logging.WithContext(ctx, e.logger).Info("file moved",
		logging.String(logging.FieldEventType, "file_moved"),
		logging.String("file", name),
		logging.String("category", category),
		logging.String("rule", string(rule)),
		logging.Int("sequence", rec.Sequence),
	)
	if sink != nil {
		sink.Handle(Event{
			Kind:        kind,
			Filename:    name,
			Category:    category,
			Rule:        rule,
			Source:      src,
			Destination: dest,
		})
	}
	return err
}
