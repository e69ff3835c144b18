// Package reintegrate reverses manual-review quarantines: it restores the
// files of each pair_NNN subfolder to their recorded original locations,
// marks fully restored pairs as ignored in the ledger, and removes the
// emptied subfolders.
package reintegrate

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"dupicheck/internal/cache"
	"dupicheck/internal/engine"
	"dupicheck/internal/fileutil"
	"dupicheck/internal/quarantine"
)

// Options configures a reintegration run.
type Options struct {
	// DryRun reports intended actions without mutating anything.
	DryRun bool
	// KeepFolders leaves emptied pair folders in place.
	KeepFolders bool
	// NoMark suppresses adding restored pairs to the ignore ledger.
	NoMark bool
}

// Problem records a per-pair issue; the run continues past it.
type Problem struct {
	PairDir string
	Path    string
	Err     error
}

// Report summarizes a reintegration run.
type Report struct {
	Restored    []string
	Marked      []cache.PairKey
	RemovedDirs []string
	Conflicts   []Problem
	Failures    []Problem
}

// Run processes every pair subfolder under manualDir. Each file is
// restored only when its original path is unoccupied; a fully restored
// pair is marked ignored unless suppressed. A conflict or unreadable
// descriptor never aborts the remaining subfolders.
func Run(ctx context.Context, manualDir string, store *cache.Store, opts Options, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dirs, err := quarantine.List(manualDir)
	if err != nil {
		return nil, engine.Wrap(engine.ErrSetup, "reintegrate", "read manual dir", manualDir, err)
	}

	report := &Report{}
	for _, name := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		processPairDir(ctx, filepath.Join(manualDir, name), store, opts, logger, report)
	}
	return report, nil
}

func processPairDir(ctx context.Context, pairDir string, store *cache.Store, opts Options, logger *slog.Logger, report *Report) {
	data, err := os.ReadFile(filepath.Join(pairDir, quarantine.DescriptorName))
	if err != nil {
		report.Failures = append(report.Failures, Problem{PairDir: pairDir, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "read descriptor", pairDir, err)})
		return
	}
	desc, err := quarantine.Parse(data)
	if err != nil {
		report.Failures = append(report.Failures, Problem{PairDir: pairDir, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "parse descriptor", pairDir, err)})
		return
	}

	restored1 := restoreFile(pairDir, desc.File1, desc.Original1, opts, logger, report)
	restored2 := restoreFile(pairDir, desc.File2, desc.Original2, opts, logger, report)

	if restored1 && restored2 {
		if !opts.NoMark {
			key := cache.CanonicalPair(desc.Original1, desc.Original2)
			if opts.DryRun {
				report.Marked = append(report.Marked, key)
			} else if err := store.AddIgnored(ctx, desc.Original1, desc.Original2); err != nil {
				report.Failures = append(report.Failures, Problem{PairDir: pairDir, Err: err})
			} else {
				logger.Info("pair marked ignored", "p1", key.P1, "p2", key.P2)
				report.Marked = append(report.Marked, key)
			}
		}
		if !opts.KeepFolders {
			if opts.DryRun {
				report.RemovedDirs = append(report.RemovedDirs, pairDir)
			} else if err := removeEmptied(pairDir); err != nil {
				report.Failures = append(report.Failures, Problem{PairDir: pairDir, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "remove pair folder", pairDir, err)})
			} else {
				report.RemovedDirs = append(report.RemovedDirs, pairDir)
			}
		}
	}
}

// restoreFile moves one quarantined file back to its original path.
// Restoring over an existing file is a conflict: both the occupying file
// and the quarantined file are left untouched.
func restoreFile(pairDir, storedName, original string, opts Options, logger *slog.Logger, report *Report) bool {
	if storedName == "" {
		storedName = filepath.Base(original)
	}
	src := filepath.Join(pairDir, storedName)
	if _, err := os.Stat(src); err != nil {
		report.Failures = append(report.Failures, Problem{PairDir: pairDir, Path: src, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "missing quarantined file", src, err)})
		return false
	}

	if _, err := os.Stat(original); err == nil {
		logger.Warn("restore conflict, original path occupied", "path", original)
		report.Conflicts = append(report.Conflicts, Problem{PairDir: pairDir, Path: original})
		return false
	} else if !os.IsNotExist(err) {
		report.Failures = append(report.Failures, Problem{PairDir: pairDir, Path: original, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "stat original", original, err)})
		return false
	}

	if opts.DryRun {
		report.Restored = append(report.Restored, original)
		return true
	}

	if err := os.MkdirAll(filepath.Dir(original), 0o755); err != nil {
		report.Failures = append(report.Failures, Problem{PairDir: pairDir, Path: original, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "create original dir", original, err)})
		return false
	}
	if err := fileutil.MoveFile(src, original); err != nil {
		report.Failures = append(report.Failures, Problem{PairDir: pairDir, Path: original, Err: engine.Wrap(engine.ErrFilesystem, "reintegrate", "restore", original, err)})
		return false
	}
	logger.Info("file restored", "path", original)
	report.Restored = append(report.Restored, original)
	return true
}

// removeEmptied deletes the descriptor and then the folder itself. Any
// unexpected leftover file makes the final rmdir fail, which is surfaced
// rather than force-removed.
func removeEmptied(pairDir string) error {
	if err := os.Remove(filepath.Join(pairDir, quarantine.DescriptorName)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Remove(pairDir)
}
