package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders one line per record:
//
//	2026-01-02 15:04:05 INFO [organizer] batch 1a2b3c4d (Downloads) - file moved file=a.jpg
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

type kv struct {
	key   string
	value slog.Value
}

// lineHeader holds the fields that are lifted out of key=value pairs.
type lineHeader struct {
	component string
	batch     string
	directory string
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	pairs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		flattenAttr(&pairs, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&pairs, h.groups, attr)
		return true
	})
	header, fields := liftHeader(pairs, record.Level >= slog.LevelInfo)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.Grow(128 + len(fields)*24)
	b.WriteString(formatTimestamp(ts))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if header.component != "" {
		b.WriteString(" [" + header.component + "]")
	}
	if subject := composeSubject(header.batch, header.directory); subject != "" {
		b.WriteString(" " + subject)
	}
	b.WriteString(" - ")
	if msg := strings.TrimSpace(record.Message); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil {
			b.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	for _, f := range fields {
		b.WriteString(" " + f.key + "=" + renderValue(f.key, f.value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

// liftHeader pulls the component, batch id and directory out of pairs. When
// fold is set the batch id and directory appear only in the subject.
// Repeated keys keep their first position and take the last value.
func liftHeader(pairs []kv, fold bool) (lineHeader, []kv) {
	var header lineHeader
	fields := make([]kv, 0, len(pairs))
	index := make(map[string]int, len(pairs))
	for _, p := range pairs {
		switch p.key {
		case "":
			continue
		case FieldComponent:
			if header.component == "" {
				header.component = plainValue(p.value)
			}
			continue
		case FieldBatchID:
			if header.batch == "" {
				header.batch = plainValue(p.value)
			}
			if fold {
				continue
			}
		case FieldDirectory:
			if header.directory == "" {
				header.directory = plainValue(p.value)
			}
			if fold {
				continue
			}
		}
		if pos, ok := index[p.key]; ok {
			fields[pos].value = p.value
			continue
		}
		index[p.key] = len(fields)
		fields = append(fields, p)
	}
	return header, fields
}

// composeSubject renders "batch 1a2b3c4d (Downloads)" from the first eight
// characters of the batch id and the base name of the directory.
func composeSubject(batch, directory string) string {
	batch = strings.TrimSpace(batch)
	directory = strings.TrimSpace(directory)
	if len(batch) > 8 {
		batch = batch[:8]
	}
	if directory != "" {
		directory = filepath.Base(directory)
	}
	switch {
	case batch != "" && directory != "":
		return "batch " + batch + " (" + directory + ")"
	case batch != "":
		return "batch " + batch
	case directory != "":
		return "(" + directory + ")"
	}
	return ""
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, child := range attr.Value.Group() {
			flattenAttr(dst, next, child)
		}
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(prefix, ".") + "." + attr.Key
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
