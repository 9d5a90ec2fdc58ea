package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running:        %s\n", yesNo(status.Running))
			fmt.Fprintf(out, "Batch file:     %s\n", status.BatchFile)
			fmt.Fprintf(out, "Pending rows:   %d\n", status.DataRows)
			fmt.Fprintf(out, "Snipe-IT:       %s\n", yesNo(status.SnipeEnabled))
			fmt.Fprintf(out, "Archive dir:    %s\n", status.ArchiveDir)
			if status.Version != "" {
				fmt.Fprintf(out, "Version:        %s\n", status.Version)
			}
			return nil
		},
	}
}
