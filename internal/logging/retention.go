package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxLogBytes is the size past which the run log is rotated aside.
const maxLogBytes = 8 << 20

// rotatedPattern matches the rotated siblings of the active log, e.g.
// foldersort-20260102-150405.log for foldersort.log.
func rotatedPattern(active string) string {
	ext := filepath.Ext(active)
	return strings.TrimSuffix(filepath.Base(active), ext) + "-*" + ext
}

// rotateLog renames active to a timestamped sibling once it exceeds limit.
// It returns the rotated path, or "" when nothing was rotated.
func rotateLog(active string, limit int64, now time.Time) (string, error) {
	info, err := os.Stat(active)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= limit {
		return "", nil
	}
	ext := filepath.Ext(active)
	target := strings.TrimSuffix(active, ext) + "-" + now.Format("20060102-150405") + ext
	if err := os.Rename(active, target); err != nil {
		return "", fmt.Errorf("rotate log file: %w", err)
	}
	return target, nil
}

// PruneLogs removes rotated siblings of the active log whose modification
// time is older than retentionDays. The active log itself is never removed,
// and retentionDays <= 0 disables pruning. It returns the number removed.
func PruneLogs(logger *slog.Logger, active string, retentionDays int) int {
	if retentionDays <= 0 || strings.TrimSpace(active) == "" {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(active), rotatedPattern(active)))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range matches {
		if path == active {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				Path("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned", String(FieldEventType, "log_pruned"), Path("path", path))
		}
	}
	return removed
}
