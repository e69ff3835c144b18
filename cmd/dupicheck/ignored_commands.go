package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dupicheck/internal/config"
)

func newIgnoredCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignored",
		Short: "Manage the ignored-pairs ledger",
	}
	cmd.AddCommand(newIgnoredListCommand(ctx))
	cmd.AddCommand(newIgnoredRemoveCommand(ctx))
	return cmd
}

func newIgnoredListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list FOLDER",
		Short: "List pairs that will never be flagged as duplicates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			pairs, err := store.ListIgnored(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(pairs) == 0 {
				fmt.Fprintln(out, "No ignored pairs.")
				return nil
			}
			rows := make([][]string, 0, len(pairs))
			for i, pair := range pairs {
				rows = append(rows, []string{strconv.Itoa(i + 1), pair.P1, pair.P2})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "File 1", "File 2"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newIgnoredRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove FOLDER (INDEX | PATH1 PATH2)",
		Short: "Remove a ledger entry so the pair can be flagged again",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				index, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("expected a numeric index or two paths, got %q", args[1])
				}
				pair, err := store.RemoveIgnoredIndex(cmd.Context(), index)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed ignored pair %s / %s.\n", pair.P1, pair.P2)
				return nil
			}

			p1, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}
			p2, err := config.ExpandPath(args[2])
			if err != nil {
				return err
			}
			removed, err := store.RemoveIgnoredPair(cmd.Context(), p1, p2)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no ignored pair for %s / %s", p1, p2)
			}
			fmt.Fprintf(out, "Removed ignored pair %s / %s.\n", p1, p2)
			return nil
		},
	}
}
