package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dupicheck/internal/action"
	"dupicheck/internal/config"
	"dupicheck/internal/engine"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var threshold int
	var manualThreshold int
	var manualDir string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete FOLDER",
		Short: "Delete the smaller file of each duplicate pair, quarantining uncertain pairs",
		Long: `Delete the smaller file of each duplicate pair, keeping the larger.

Pairs whose distance exceeds the manual threshold are not deleted; both
files are moved into a numbered pair folder under the manual-check
directory for human review. Use the reintegrate command to restore
reviewed pairs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			thr := resolveThreshold(cmd, "threshold", threshold, cfg.Matching.Threshold)
			manualThr := resolveThreshold(cmd, "manual-threshold", manualThreshold, cfg.Matching.ManualThreshold)

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

			resolvedManualDir := strings.TrimSpace(manualDir)
			if resolvedManualDir == "" {
				resolvedManualDir = filepath.Join(result.folder, "manual_check")
			} else {
				if resolvedManualDir, err = config.ExpandPath(resolvedManualDir); err != nil {
					return err
				}
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			confirm := confirmPrompter(cmd.InOrStdin(), out)
			report, err := action.New(logger).Apply(cmd.Context(), result.pairs, action.ModeDelete, action.Options{
				ManualDir:       resolvedManualDir,
				ManualThreshold: manualThr,
				Confirmed:       yes,
				Confirm:         confirm,
			})
			if err != nil {
				if errors.Is(err, engine.ErrConfirmationDenied) && confirm != nil {
					// The user was asked and said no: clean abort.
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
				return err
			}

			fmt.Fprintf(out, "Kept %d, deleted %d, quarantined %d pair(s)", len(report.Kept), len(report.Deleted), len(report.Quarantined))
			if len(report.Quarantined) > 0 {
				fmt.Fprintf(out, " under %s", resolvedManualDir)
			}
			fmt.Fprintln(out, ".")
			printPairFailures(cmd.ErrOrStderr(), report)
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Hash distance threshold (default from config)")
	cmd.Flags().IntVarP(&manualThreshold, "manual-threshold", "M", 0, "Distance above which pairs go to manual review (default from config)")
	cmd.Flags().StringVarP(&manualDir, "manual-dir", "m", "", "Manual-check directory (default: FOLDER/manual_check)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion without prompting")
	return cmd
}

// confirmPrompter returns an interactive y/N prompt when stdin is a
// terminal, or nil so the engine refuses destructive work in
// non-interactive use.
func confirmPrompter(in io.Reader, out io.Writer) func(string) bool {
	if f, ok := in.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return nil
	}
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}
}

func printPairFailures(out io.Writer, report *action.Report) {
	if report == nil || len(report.Failures) == 0 {
		return
	}
	fmt.Fprintf(out, "Warning: %d pair(s) could not be processed:\n", len(report.Failures))
	for _, failure := range report.Failures {
		fmt.Fprintf(out, "  %s / %s: %v\n", failure.Pair.P1, failure.Pair.P2, failure.Err)
	}
}
