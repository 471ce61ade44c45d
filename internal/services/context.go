package services

import "context"

type contextKey string

const (
	batchIDKey   contextKey = "batch_id"
	directoryKey contextKey = "directory"
	operationKey contextKey = "operation"
)

// WithBatchID annotates context with the organize batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(batchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDirectory annotates context with the directory currently being organized.
func WithDirectory(ctx context.Context, dir string) context.Context {
	if dir == "" {
		return ctx
	}
	return context.WithValue(ctx, directoryKey, dir)
}

// DirectoryFromContext returns the directory if present.
func DirectoryFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(directoryKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithOperation annotates context with the top-level operation (organize, undo).
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(operationKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
