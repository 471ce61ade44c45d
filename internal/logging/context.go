package logging

import (
	"context"
	"log/slog"

	"foldersort/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID is the standardized structured logging key for organize batch identifiers.
	FieldBatchID = "batch_id"
	// FieldDirectory is the standardized structured logging key for the directory being organized.
	FieldDirectory = "directory"
	// FieldOperation is the standardized structured logging key for top-level operations.
	FieldOperation = "operation"
	// FieldEventType classifies a log record for filtering (file_moved, undo_restored, ...).
	FieldEventType = "event_type"
	// FieldErrorHint carries a short next step for WARN and ERROR records.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if dir, ok := services.DirectoryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDirectory, dir))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
