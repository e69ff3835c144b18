package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status FOLDER",
		Short: "Show hash cache statistics for a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Database", stats.Path},
					{"Cached hashes", strconv.FormatInt(stats.Entries, 10)},
					{"Ignored pairs", strconv.FormatInt(stats.IgnoredPairs, 10)},
					{"File size (bytes)", strconv.FormatInt(stats.FileSize, 10)},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
	return cmd
}
