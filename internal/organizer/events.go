package organizer

import (
	"fmt"
	"path/filepath"

	"foldersort/internal/ledger"
)

// EventKind classifies an Event.
type EventKind string

const (
	EventMoved           EventKind = "moved"
	EventMovedCustomRule EventKind = "moved_custom_rule"
	EventUndone          EventKind = "undone"
	EventInfo            EventKind = "info"
)

// Event reports one observable step of an organize or undo run.
type Event struct {
	Kind        EventKind   `json:"kind"`
	Filename    string      `json:"filename,omitempty"`
	Category    string      `json:"category,omitempty"`
	Rule        ledger.Rule `json:"rule,omitempty"`
	Source      string      `json:"source,omitempty"`
	Destination string      `json:"destination,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Line renders the event as a single human-readable log line.
func (e Event) Line() string {
	switch e.Kind {
	case EventMoved:
		return fmt.Sprintf("Moved: %s -> %s", e.Filename, e.Category)
	case EventMovedCustomRule:
		return fmt.Sprintf("Moved (Custom Rule): %s -> %s", e.Filename, e.Category)
	case EventUndone:
		return fmt.Sprintf("Undo: Moved back %s -> %s", e.Filename, filepath.Dir(e.Source))
	default:
		return e.Message
	}
}

// EventSink receives events synchronously, in order.
type EventSink interface {
	Handle(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

// Handle calls f.
func (f SinkFunc) Handle(e Event) { f(e) }

// MultiSink fans events out to every non-nil sink.
func MultiSink(sinks ...EventSink) EventSink {
	filtered := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

type multiSink []EventSink

func (m multiSink) Handle(e Event) {
	for _, s := range m {
		s.Handle(e)
	}
}

// Progress is reported after each processed file.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// ProgressFunc receives progress updates synchronously.
type ProgressFunc func(Progress)
