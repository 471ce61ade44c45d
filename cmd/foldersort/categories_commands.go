package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"foldersort/internal/categories"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect and manage the category table",
	}

	categoriesCmd.AddCommand(newCategoriesListCommand(ctx))
	categoriesCmd.AddCommand(newCategoriesInitCommand(ctx))
	categoriesCmd.AddCommand(newCategoriesPathCommand(ctx))

	return categoriesCmd
}

func newCategoriesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show categories in precedence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, created, err := categories.Load(afero.NewOsFs(), cfg.Paths.CategoriesFile)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, table.Categories())
			}

			out := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(out, "Wrote default categories to %s\n", cfg.Paths.CategoriesFile)
			}
			rows := make([][]string, 0, table.Len())
			for _, cat := range table.Categories() {
				exts := strings.Join(cat.Extensions, " ")
				if cat.Name == categories.Others {
					exts = "(everything else)"
				}
				rows = append(rows, []string{cat.Name, exts})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{col("Category"), col("Extensions")}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output categories as JSON")
	return cmd
}

func newCategoriesInitCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default category table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fsys := afero.NewOsFs()
			target := cfg.Paths.CategoriesFile
			if !overwrite {
				if _, err := fsys.Stat(target); err == nil {
					return fmt.Errorf("category file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check category path: %w", err)
				}
			}
			if err := categories.Save(fsys, target, categories.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default categories to %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing category file")
	return cmd
}

func newCategoriesPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the category table location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.CategoriesFile)
			return nil
		},
	}
}
