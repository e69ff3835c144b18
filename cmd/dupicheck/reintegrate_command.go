package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dupicheck/internal/cache"
	"dupicheck/internal/config"
	"dupicheck/internal/reintegrate"
)

func newReintegrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var noRemove bool
	var noMark bool

	cmd := &cobra.Command{
		Use:   "reintegrate MANUAL_DIR",
		Short: "Restore quarantined pairs to their original locations",
		Long: `Restore the files of each pair folder under MANUAL_DIR to the
original paths recorded in their descriptors. Fully restored pairs are
added to the ignore ledger so later scans do not flag them again, and
their emptied pair folders are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			manualDir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			// Default database: the scanned folder is the manual dir's
			// parent unless --db overrides.
			dbPath := ""
			if ctx.dbFlag != nil && strings.TrimSpace(*ctx.dbFlag) != "" {
				if dbPath, err = config.ExpandPath(*ctx.dbFlag); err != nil {
					return err
				}
			} else {
				dbPath = filepath.Join(filepath.Dir(manualDir), cfg.Cache.DBFilename)
			}

			store, err := cache.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := reintegrate.Run(cmd.Context(), manualDir, store, reintegrate.Options{
				DryRun:      dryRun,
				KeepFolders: noRemove,
				NoMark:      noMark,
			}, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			prefix := ""
			if dryRun {
				prefix = "[dry-run] "
			}
			fmt.Fprintf(out, "%sRestored %d file(s), marked %d pair(s) ignored, removed %d folder(s).\n",
				prefix, len(report.Restored), len(report.Marked), len(report.RemovedDirs))
			for _, conflict := range report.Conflicts {
				fmt.Fprintf(out, "%sConflict: %s is occupied; %s left in place.\n", prefix, conflict.Path, conflict.PairDir)
			}
			for _, failure := range report.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %v\n", failure.PairDir, failure.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report intended actions without moving anything")
	cmd.Flags().BoolVar(&noRemove, "no-remove", false, "Keep emptied pair folders")
	cmd.Flags().BoolVar(&noMark, "no-mark", false, "Do not mark restored pairs as ignored")
	return cmd
}
