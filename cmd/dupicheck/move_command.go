package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupicheck/internal/action"
	"dupicheck/internal/config"
)

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "move FOLDER TARGET",
		Short: "Copy each duplicate pair into the target folder, leaving originals in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			thr := resolveThreshold(cmd, "threshold", threshold, cfg.Matching.Threshold)

			target, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			result, err := runPipeline(cmd, ctx, args[0], thr)
			if err != nil {
				return err
			}
			defer result.Close()

			out := cmd.OutOrStdout()
			printPairs(out, result.pairs)
			printHashWarnings(cmd.ErrOrStderr(), result.hashReport)
			if len(result.pairs) == 0 {
				return nil
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			report, err := action.New(logger).Apply(cmd.Context(), result.pairs, action.ModeMove, action.Options{
				MoveTarget: target,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Copied %d pair(s) into %s.\n", len(report.Moved), target)
			printPairFailures(cmd.ErrOrStderr(), report)
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Hash distance threshold (default from config)")
	return cmd
}
