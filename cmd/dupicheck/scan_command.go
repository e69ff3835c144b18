package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupicheck/internal/action"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "scan FOLDER",
		Short: "Report near-duplicate images without touching anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			thr := resolveThreshold(cmd, "threshold", threshold, cfg.Matching.Threshold)

			result, err := runPipeline(cmd, ctx, args[0], thr)
			if err != nil {
				return err
			}
			defer result.Close()

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			report, err := action.New(logger).Apply(cmd.Context(), result.pairs, action.ModeReport, action.Options{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %s: %d image(s), %d hashed, %d from cache\n",
				result.folder,
				len(result.hashReport.Records),
				result.hashReport.Computed,
				result.hashReport.CacheHits)
			printPairs(out, report.Pairs)
			printHashWarnings(cmd.ErrOrStderr(), result.hashReport)
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Hash distance threshold (default from config)")
	return cmd
}
