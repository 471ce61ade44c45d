package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"foldersort/internal/organizer"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiRed    = "\033[31m"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

// eventPrinter writes one line per organizer event.
type eventPrinter struct {
	out   io.Writer
	color bool
}

func newEventPrinter(out io.Writer) *eventPrinter {
	return &eventPrinter{out: out, color: shouldColorize(out)}
}

func (p *eventPrinter) Handle(event organizer.Event) {
	var color string
	switch event.Kind {
	case organizer.EventMoved:
		color = ansiGreen
	case organizer.EventMovedCustomRule:
		color = ansiYellow
	case organizer.EventUndone:
		color = ansiBlue
	}
	fmt.Fprintln(p.out, colorize(event.Line(), color, p.color))
}

// eventRecorder keeps events for JSON output.
type eventRecorder struct {
	events []eventJSON
}

type eventJSON struct {
	Kind        organizer.EventKind `json:"kind"`
	Line        string              `json:"line"`
	Filename    string              `json:"filename,omitempty"`
	Category    string              `json:"category,omitempty"`
	Rule        string              `json:"rule,omitempty"`
	Source      string              `json:"source,omitempty"`
	Destination string              `json:"destination,omitempty"`
}

func (r *eventRecorder) Handle(event organizer.Event) {
	r.events = append(r.events, eventJSON{
		Kind:        event.Kind,
		Line:        event.Line(),
		Filename:    event.Filename,
		Category:    event.Category,
		Rule:        string(event.Rule),
		Source:      event.Source,
		Destination: event.Destination,
	})
}
