package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"dupicheck/internal/cache"
	"dupicheck/internal/engine"
	"dupicheck/internal/hashing"
	"dupicheck/internal/match"
)

// pipelineResult carries one scan's outputs. The caller owns the store
// and must close it.
type pipelineResult struct {
	folder     string
	store      *cache.Store
	pairs      []match.Pair
	hashReport *hashing.BatchReport
}

func (r *pipelineResult) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}

// runPipeline walks, hashes, and matches one folder: the shared front half
// of the scan, move, and delete commands.
func runPipeline(cmd *cobra.Command, ctx *commandContext, folder string, threshold int) (*pipelineResult, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, engine.Wrap(engine.ErrSetup, "scan", "resolve folder", folder, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, engine.Wrap(engine.ErrSetup, "scan", "target folder", abs, err)
	}
	if !info.IsDir() {
		return nil, engine.Wrap(engine.ErrSetup, "scan", "target folder", abs+" is not a directory", nil)
	}

	paths, err := hashing.ListImages(abs, cfg.IsImageExtension)
	if err != nil {
		return nil, err
	}

	store, err := ctx.openStore(abs)
	if err != nil {
		return nil, err
	}

	hasher := hashing.New(store, logger)
	hashReport, err := hasher.HashAll(cmd.Context(), paths, ctx.workers(), progressCallback(ctx, len(paths)))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if pruned, err := store.PruneExcept(cmd.Context(), paths); err != nil {
		logger.Warn("cache prune failed", "error", err)
	} else if pruned > 0 {
		logger.Debug("pruned cache entries for vanished files", "count", pruned)
	}

	ignored, err := store.IgnoredSet(cmd.Context())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &pipelineResult{
		folder:     abs,
		store:      store,
		pairs:      match.FindDuplicates(hashReport.Records, threshold, ignored),
		hashReport: hashReport,
	}, nil
}

func progressCallback(ctx *commandContext, total int) func(done, total int) {
	if ctx.noProgress != nil && *ctx.noProgress {
		return nil
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	if total == 0 {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, total int) {
		_ = bar.Add(1)
	}
}

// resolveThreshold prefers the flag when set, the config default otherwise.
func resolveThreshold(cmd *cobra.Command, name string, flagValue, configValue int) int {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return configValue
}

func printPairs(out io.Writer, pairs []match.Pair) {
	if len(pairs) == 0 {
		fmt.Fprintln(out, "No duplicates found.")
		return
	}
	rows := make([][]string, 0, len(pairs))
	for i, pair := range pairs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			pair.P1,
			pair.P2,
			strconv.Itoa(pair.Distance),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "File 1", "File 2", "Distance"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(out, "Found %d duplicate pair(s).\n", len(pairs))
}

func printHashWarnings(out io.Writer, report *hashing.BatchReport) {
	if report == nil || len(report.Failures) == 0 {
		return
	}
	fmt.Fprintf(out, "Warning: %d file(s) could not be read and were excluded:\n", len(report.Failures))
	for _, failure := range report.Failures {
		fmt.Fprintf(out, "  %s: %v\n", failure.Path, failure.Err)
	}
}
