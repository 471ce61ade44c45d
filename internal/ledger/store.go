package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current journal schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the journal was written by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	timeLayout              = time.RFC3339Nano
)

// Store persists the current batch in SQLite so a later process can undo it.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore initializes or connects to the journal database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginBatch discards any stored batch and starts a new one.
func (s *Store) BeginBatch(ctx context.Context, id string, startedAt time.Time, directories []string) error {
	dirs, err := json.Marshal(directories)
	if err != nil {
		return fmt.Errorf("encode directories: %w", err)
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, "DELETE FROM batches"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO batches (id, started_at, directories) VALUES (?, ?, ?)",
			id, startedAt.UTC().Format(timeLayout), string(dirs),
		); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// AppendMove stores one move of the batch.
func (s *Store) AppendMove(ctx context.Context, batchID string, rec Record) error {
	return s.execWithRetry(ctx,
		`INSERT INTO moves (batch_id, seq, source, destination, category, rule, moved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, rec.Sequence, rec.Source, rec.Destination, rec.Category, string(rec.Rule),
		rec.MovedAt.UTC().Format(timeLayout),
	)
}

// DeleteMove drops a move that has been reverted.
func (s *Store) DeleteMove(ctx context.Context, batchID string, seq int) error {
	return s.execWithRetry(ctx, "DELETE FROM moves WHERE batch_id = ? AND seq = ?", batchID, seq)
}

// ClearBatch removes the stored batch and its moves.
func (s *Store) ClearBatch(ctx context.Context) error {
	return s.execWithRetry(ctx, "DELETE FROM batches")
}

// LoadBatch returns the stored batch. The boolean is false when none exists.
func (s *Store) LoadBatch(ctx context.Context) (Batch, bool, error) {
	ctx = ensureContext(ctx)
	var (
		batch     Batch
		startedAt string
		dirs      string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, directories FROM batches ORDER BY started_at DESC LIMIT 1",
	).Scan(&batch.ID, &startedAt, &dirs)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, false, nil
	}
	if err != nil {
		return Batch{}, false, fmt.Errorf("query batch: %w", err)
	}
	if batch.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Batch{}, false, fmt.Errorf("parse batch start: %w", err)
	}
	if err := json.Unmarshal([]byte(dirs), &batch.Directories); err != nil {
		return Batch{}, false, fmt.Errorf("decode batch directories: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, source, destination, category, rule, moved_at
		 FROM moves WHERE batch_id = ? ORDER BY seq`, batch.ID)
	if err != nil {
		return Batch{}, false, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rec     Record
			rule    string
			movedAt string
		)
		if err := rows.Scan(&rec.Sequence, &rec.Source, &rec.Destination, &rec.Category, &rule, &movedAt); err != nil {
			return Batch{}, false, fmt.Errorf("scan move: %w", err)
		}
		rec.Rule = Rule(rule)
		if rec.MovedAt, err = time.Parse(timeLayout, movedAt); err != nil {
			return Batch{}, false, fmt.Errorf("parse move time: %w", err)
		}
		batch.Records = append(batch.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return Batch{}, false, fmt.Errorf("iterate moves: %w", err)
	}
	return batch, true, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete %s to reset undo history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
