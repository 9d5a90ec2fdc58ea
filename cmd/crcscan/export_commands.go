package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Archive the current batch as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			result, err := client.Finalize()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Batch archived as %s\n", result.Filename)
			return nil
		},
	}
}

func newExportsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List recorded export history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			history, err := client.Exports(limit)
			if err != nil {
				return err
			}
			if len(history.Exports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No exports recorded")
				return nil
			}

			rows := make([][]string, 0, len(history.Exports))
			for _, exp := range history.Exports {
				rows = append(rows, []string{
					strconv.FormatInt(exp.ID, 10),
					exp.Filename,
					strconv.Itoa(exp.DataRows),
					exp.CreatedAt,
				})
			}
			printTable([]string{"ID", "Filename", "Rows", "Created"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of exports to show (0 for all)")
	return cmd
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var download string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List or download archived export files",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			if download != "" {
				dest := filepath.Join(outputDir, filepath.Base(download))
				file, createErr := os.Create(dest)
				if createErr != nil {
					return fmt.Errorf("create %s: %w", dest, createErr)
				}
				defer file.Close()

				n, dlErr := client.Download(download, file)
				if dlErr != nil {
					os.Remove(dest)
					return dlErr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", dest, n)
				return nil
			}

			files, err := client.Files()
			if err != nil {
				return err
			}
			if len(files.Files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived files")
				return nil
			}
			for _, name := range files.Files {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&download, "download", "", "Download the named file instead of listing")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for downloaded files")
	return cmd
}
