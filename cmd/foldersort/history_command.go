package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"foldersort/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the moves the next undo would revert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.OpenStore(cfg.LedgerPath())
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			batch, ok, err := store.LoadBatch(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				if !ok {
					return writeJSON(cmd, ledger.Batch{Directories: []string{}, Records: []ledger.Record{}})
				}
				return writeJSON(cmd, batch)
			}

			out := cmd.OutOrStdout()
			if !ok || len(batch.Records) == 0 {
				fmt.Fprintln(out, "No actions to undo.")
				return nil
			}
			fmt.Fprintf(out, "Batch %s started %s (%d moves)\n", batch.ID, batch.StartedAt.Local().Format(time.DateTime), len(batch.Records))
			rows := make([][]string, 0, len(batch.Records))
			for _, rec := range batch.Records {
				rows = append(rows, []string{
					strconv.Itoa(rec.Sequence),
					rec.Category,
					string(rec.Rule),
					rec.Source,
					filepath.Base(rec.Destination),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{rightCol("#"), col("Category"), col("Rule"), col("Source"), col("Moved As")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the batch as JSON")
	return cmd
}
