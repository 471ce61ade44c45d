package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"foldersort/internal/categories"
	"foldersort/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

// configTarget resolves the --path flag, falling back to the default location.
func configTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool
	var withCategories bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)

			if !withCategories {
				return nil
			}
			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("load new config: %w", err)
			}
			_, created, err := categories.Load(afero.NewOsFs(), cfg.Paths.CategoriesFile)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Wrote default categories to %s\n", cfg.Paths.CategoriesFile)
			} else {
				fmt.Fprintf(out, "Kept existing categories at %s\n", cfg.Paths.CategoriesFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	cmd.Flags().BoolVar(&withCategories, "with-categories", false, "Also write the default category table when it is missing")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and show the resolved settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			metricsFile := cfg.Metrics.Textfile
			if metricsFile == "" {
				metricsFile = "(disabled)"
			}
			rows := [][]string{
				{"Ledger", cfg.LedgerPath()},
				{"Log file", cfg.LogPath()},
				{"Categories", cfg.Paths.CategoriesFile},
				{"Duplicates", yesNo(cfg.Organize.HandleDuplicates)},
				{"Collision policy", cfg.Organize.CollisionPolicy},
				{"Archive rule", archiveRule(cfg)},
				{"Metrics textfile", metricsFile},
			}
			fmt.Fprintln(out, renderTable([]tableColumn{col("Setting"), col("Value")}, rows))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func archiveRule(cfg *config.Config) string {
	rule := "older than " + strconv.Itoa(cfg.Organize.ArchiveAfterDays) + " days -> " + cfg.Organize.ArchiveFolder
	if !cfg.Organize.ApplyCustomRules {
		rule += " (off)"
	}
	return rule
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
