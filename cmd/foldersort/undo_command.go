package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foldersort/internal/ledger"
	"foldersort/internal/logging"
	"foldersort/internal/metrics"
	"foldersort/internal/organizer"
)

type undoJSON struct {
	Result ledger.UndoResult `json:"result"`
	Events []eventJSON       `json:"events"`
	Error  string            `json:"error,omitempty"`
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Move every file of the last organize batch back, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			recorder := &eventRecorder{}
			var sink organizer.EventSink = recorder
			if !jsonOutput {
				sink = newEventPrinter(cmd.OutOrStdout())
			}
			var collector *metrics.Collector
			if s.cfg.Metrics.Textfile != "" {
				collector = metrics.New()
				sink = organizer.MultiSink(sink, collector)
			}

			result, runErr := s.engine.Undo(cmd.Context(), sink)

			if collector != nil && !result.NothingToUndo {
				if err := collector.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
					logging.WarnWithContext(s.logger, "metrics textfile not written", "metrics_write_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check metrics.textfile permissions"),
						logging.String(logging.FieldImpact, "metrics reflect an earlier run"),
					)
				}
			}

			if jsonOutput {
				payload := undoJSON{Result: result, Events: recorder.events}
				if runErr != nil {
					payload.Error = runErr.Error()
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
				return runErr
			}
			if result.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d file(s) already back in place\n", result.Skipped)
			}
			if runErr != nil && result.Remaining > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d file(s); %d move(s) remain in the ledger\n", result.Restored, result.Remaining)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	return cmd
}
