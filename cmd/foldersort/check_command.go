package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foldersort/internal/config"
	"foldersort/internal/preflight"
	"foldersort/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check [DIR...]",
		Short: "Verify state paths, the category table, and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs := make([]string, 0, len(args))
			for _, arg := range args {
				dir, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				dirs = append(dirs, dir)
			}

			results := preflight.RunAll(cfg, dirs)
			failed := preflight.Failed(results)

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := colorize("ok", ansiGreen, color)
					if !r.Passed {
						status = colorize("FAIL", ansiRed, color)
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				fmt.Fprintln(out, renderTable([]tableColumn{col("Check"), col("Status"), col("Detail")}, rows))
			}

			if len(failed) > 0 {
				return services.Wrap(services.ErrValidation, "check", "", fmt.Sprintf("%d of %d checks failed", len(failed), len(results)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}
