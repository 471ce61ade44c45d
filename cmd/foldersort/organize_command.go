package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"foldersort/internal/config"
	"foldersort/internal/logging"
	"foldersort/internal/metrics"
	"foldersort/internal/organizer"
	"foldersort/internal/preflight"
	"foldersort/internal/services"
)

type organizeFlags struct {
	handleDuplicates bool
	customRules      bool
	archiveAfterDays int
	renamePattern    string
	search           string
	collision        string
	jsonOutput       bool
	noProgress       bool
}

type organizeJSON struct {
	Result organizer.Result `json:"result"`
	Events []eventJSON      `json:"events"`
	Error  string           `json:"error,omitempty"`
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var flags organizeFlags

	cmd := &cobra.Command{
		Use:   "organize DIR...",
		Short: "Move the files of each directory into category folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := organizeOptions(cmd, cfg, flags, args)
			if err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunAll(nil, opts.Directories)); len(failed) > 0 {
				details := make([]string, 0, len(failed))
				for _, r := range failed {
					details = append(details, r.Detail)
				}
				return services.Wrap(services.ErrValidation, "organize", "preflight", strings.Join(details, "; "), nil)
			}

			s, err := ctx.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			var collector *metrics.Collector
			if cfg.Metrics.Textfile != "" {
				collector = metrics.New()
			}
			recorder := &eventRecorder{}
			var sink organizer.EventSink = recorder
			if !flags.jsonOutput {
				sink = newEventPrinter(out)
			}
			if collector != nil {
				sink = organizer.MultiSink(sink, collector)
			}
			progress := newProgressReporter(cmd.ErrOrStderr(), !flags.noProgress && !flags.jsonOutput, s.logger)

			result, runErr := s.engine.Organize(cmd.Context(), opts, progress.update, sink)
			progress.finish()

			if collector != nil {
				collector.ObserveBatch(result, runErr)
				if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					logging.WarnWithContext(s.logger, "metrics textfile not written", "metrics_write_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check metrics.textfile permissions"),
						logging.String(logging.FieldImpact, "metrics reflect an earlier run"),
					)
				}
			}

			if flags.jsonOutput {
				payload := organizeJSON{Result: result, Events: recorder.events}
				if runErr != nil {
					payload.Error = runErr.Error()
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
				return runErr
			}

			printOrganizeSummary(out, result)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&flags.handleDuplicates, "handle-duplicates", false, "Keep both files on name collisions by appending (1), (2), ...")
	cmd.Flags().BoolVar(&flags.customRules, "custom-rules", false, "Archive files older than --archive-after days")
	cmd.Flags().IntVar(&flags.archiveAfterDays, "archive-after", 0, "Age in days after which the archive rule applies")
	cmd.Flags().StringVar(&flags.renamePattern, "rename-pattern", "", "Rename classified files to PATTERN_N.ext")
	cmd.Flags().StringVar(&flags.search, "search", "", "Only organize files whose name contains this text")
	cmd.Flags().StringVar(&flags.collision, "collision", "", "Collision policy when duplicates are not handled: overwrite or fail")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// organizeOptions layers command-line flags over the configured defaults.
func organizeOptions(cmd *cobra.Command, cfg *config.Config, flags organizeFlags, args []string) (organizer.Options, error) {
	opts := organizer.Options{
		Directories:      make([]string, 0, len(args)),
		HandleDuplicates: cfg.Organize.HandleDuplicates,
		ApplyCustomRules: cfg.Organize.ApplyCustomRules,
		RenamePattern:    flags.renamePattern,
		SearchQuery:      flags.search,
		ArchiveAfter:     cfg.ArchiveAfter(),
		ArchiveFolder:    cfg.Organize.ArchiveFolder,
		Collision:        organizer.CollisionPolicy(cfg.Organize.CollisionPolicy),
	}
	for _, arg := range args {
		dir, err := config.ExpandPath(arg)
		if err != nil {
			return opts, services.Wrap(services.ErrValidation, "organize", "options", arg, err)
		}
		opts.Directories = append(opts.Directories, dir)
	}

	changed := cmd.Flags().Changed
	if changed("handle-duplicates") {
		opts.HandleDuplicates = flags.handleDuplicates
	}
	if changed("custom-rules") {
		opts.ApplyCustomRules = flags.customRules
	}
	if changed("archive-after") {
		if flags.archiveAfterDays <= 0 {
			return opts, services.Wrap(services.ErrValidation, "organize", "options", "--archive-after must be positive", nil)
		}
		opts.ArchiveAfter = time.Duration(flags.archiveAfterDays) * 24 * time.Hour
	}
	if changed("collision") {
		policy, err := organizer.ParseCollisionPolicy(flags.collision)
		if err != nil {
			return opts, err
		}
		opts.Collision = policy
	}
	return opts, nil
}

func printOrganizeSummary(out io.Writer, result organizer.Result) {
	if len(result.PerCategory) > 0 {
		names := make([]string, 0, len(result.PerCategory))
		for name := range result.PerCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, strconv.Itoa(result.PerCategory[name])})
		}
		fmt.Fprintln(out, renderTable(
			[]tableColumn{col("Category"), rightCol("Files")},
			rows,
			"Total", strconv.Itoa(result.Organized),
		))
	}
	fmt.Fprintf(out, "Files Organized: %d/%d\n", result.Organized, result.TotalEligible)
}
