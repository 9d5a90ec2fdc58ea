package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/api"
)

var batchHeaders = []string{"Equipment Type", "Item Description", "Serial Number", "Temple Tag"}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <serial-or-tag>",
		Short: "Resolve a scanned identifier against the asset registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			result, err := client.Lookup(args[0])
			if err != nil {
				return err
			}

			row := []string{result.EquipmentType, result.ItemDescription, result.SerialNumber, result.TempleTag}
			printTable(batchHeaders, [][]string{row}, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "Found in Snipe-IT: %s\n", yesNo(result.FoundInSnipe))
			return nil
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		equipmentType string
		description   string
		templeTag     string
		noLookup      bool
	)

	cmd := &cobra.Command{
		Use:   "add <serial-or-tag>",
		Short: "Append a scanned item to the current batch",
		Long: "Resolves the scanned identifier through the daemon and appends the " +
			"resulting record to the working batch. Explicit flags override resolved fields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			payload := api.RecordPayload{
				EquipmentType:   equipmentType,
				ItemDescription: description,
				SerialNumber:    args[0],
				TempleTag:       templeTag,
			}
			if !noLookup {
				resolved, lookupErr := client.Lookup(args[0])
				if lookupErr != nil {
					return lookupErr
				}
				payload = mergeRecord(resolved.RecordPayload, payload)
			}

			result, err := client.Add(payload)
			if err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("item rejected: %s", result.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to the batch\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&equipmentType, "type", "", "Equipment type override")
	cmd.Flags().StringVar(&description, "description", "", "Item description override")
	cmd.Flags().StringVar(&templeTag, "tag", "", "Temple tag override")
	cmd.Flags().BoolVar(&noLookup, "no-lookup", false, "Skip registry resolution and store the flags as given")
	return cmd
}

// mergeRecord keeps resolved fields unless the operator supplied an override.
func mergeRecord(resolved, override api.RecordPayload) api.RecordPayload {
	out := resolved
	if override.EquipmentType != "" {
		out.EquipmentType = override.EquipmentType
	}
	if override.ItemDescription != "" {
		out.ItemDescription = override.ItemDescription
	}
	if override.SerialNumber != "" && out.SerialNumber == "" {
		out.SerialNumber = override.SerialNumber
	}
	if override.TempleTag != "" {
		out.TempleTag = override.TempleTag
	}
	return out
}

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently scanned items",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			recent, err := client.Recent(limit)
			if err != nil {
				return err
			}
			if len(recent.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items in the current batch")
				return nil
			}
			printTable(batchHeaders, recent.Items, nil)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of items to show")
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the current batch without exporting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("reset discards all pending scans; re-run with --yes to confirm")
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if _, err := client.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Batch cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm discarding the batch")
	return cmd
}
