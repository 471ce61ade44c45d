package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigCorrupt     = errors.New("category table corrupt")
	ErrIO                = errors.New("filesystem failure")
	ErrDestinationExists = fmt.Errorf("%w: destination exists", ErrIO)
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrLocked            = errors.New("state locked by another process")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitHint returns a short remediation hint for known error classes, or an
// empty string when none applies.
func ExitHint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigCorrupt):
		return "fix or delete the category file, then run 'foldersort categories init'"
	case errors.Is(err, ErrConfiguration):
		return "check the file with 'foldersort config validate'"
	case errors.Is(err, ErrLocked):
		return "another foldersort run is in progress"
	case errors.Is(err, ErrDestinationExists):
		return "rerun with --handle-duplicates or --collision overwrite"
	case errors.Is(err, ErrIO):
		return "moves completed before the failure can be reverted with 'foldersort undo'"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
