package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"foldersort/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// File, when set, is opened for appending.
	File string
	// Writer, when set, receives output in addition to File.
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(opts.Level))
	addSource := levelVar.Level() <= slog.LevelDebug

	var build func(io.Writer) slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		build = func(w io.Writer) slog.Handler { return newJSONHandler(w, levelVar, addSource) }
	case "", "console":
		build = func(w io.Writer) slog.Handler { return newPrettyHandler(w, levelVar, addSource) }
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	writers := make([]io.Writer, 0, 2)
	if opts.Writer != nil {
		writers = append(writers, opts.Writer)
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		return slog.New(build(io.Discard)), nil
	case 1:
		return slog.New(build(writers[0])), nil
	default:
		return slog.New(build(io.MultiWriter(writers...))), nil
	}
}

// NewFromConfig creates a logger that appends to the configured run log,
// rotating it aside first when it has grown too large. When console is
// non-nil, records are also rendered there in console format regardless of
// the configured file format.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Writer: console})
	}

	var path string
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		path = cfg.LogPath()
		if _, err := rotateLog(path, maxLogBytes, time.Now()); err != nil {
			return nil, err
		}
	}

	fileLogger, err := New(Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   path,
	})
	if err != nil {
		return nil, err
	}
	if console == nil {
		return fileLogger, nil
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(cfg.Logging.Level))
	return TeeLogger(fileLogger, newPrettyHandler(console, levelVar, false)), nil
}

// ParseLevel maps a configured level name to a slog level; unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}
