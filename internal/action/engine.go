// Package action applies a policy to matched duplicate pairs: report them,
// copy them into a review folder, or delete the smaller file of each pair
// with uncertain pairs quarantined for manual review.
package action

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dupicheck/internal/engine"
	"dupicheck/internal/fileutil"
	"dupicheck/internal/match"
	"dupicheck/internal/quarantine"
)

// Mode selects what Apply does to each pair.
type Mode string

const (
	// ModeReport performs no filesystem mutation.
	ModeReport Mode = "report"
	// ModeMove copies both files of each pair into the target folder.
	// Originals are never touched.
	ModeMove Mode = "move"
	// ModeDelete keeps the larger file of each pair and deletes the
	// smaller, quarantining pairs above the manual threshold.
	ModeDelete Mode = "delete"
)

// Options configures Apply.
type Options struct {
	// MoveTarget is the destination folder for ModeMove.
	MoveTarget string
	// ManualDir receives quarantined pairs in ModeDelete.
	ManualDir string
	// ManualThreshold is the distance above which pairs are quarantined
	// instead of deleted.
	ManualThreshold int
	// Confirmed skips the confirmation gate for destructive modes.
	Confirmed bool
	// Confirm prompts the user when Confirmed is false. A nil Confirm in
	// a destructive mode refuses the action.
	Confirm func(prompt string) bool
}

// PairError records a per-pair failure. The batch always continues past it.
type PairError struct {
	Pair match.Pair
	Err  error
}

// Report summarizes one Apply run.
type Report struct {
	Pairs       []match.Pair
	Kept        []string
	Deleted     []string
	Quarantined []string
	Moved       []string
	Failures    []PairError
}

// Engine mutates the filesystem according to the chosen mode.
type Engine struct {
	logger *slog.Logger
}

// New returns an Engine. A nil logger is valid.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

const confirmPrompt = "Are you sure you want to DELETE duplicates?"

// Apply processes the pairs under the given mode. Destructive modes are
// gated on confirmation; per-pair filesystem errors are recorded in the
// report and never abort the batch.
func (e *Engine) Apply(ctx context.Context, pairs []match.Pair, mode Mode, opts Options) (*Report, error) {
	report := &Report{Pairs: pairs}

	switch mode {
	case ModeReport:
		return report, nil
	case ModeMove:
		return report, e.applyMove(ctx, pairs, opts, report)
	case ModeDelete:
		if err := confirmDestructive(opts); err != nil {
			return nil, err
		}
		return report, e.applyDelete(ctx, pairs, opts, report)
	default:
		return nil, engine.Wrap(engine.ErrSetup, "action", "apply", "unknown mode "+string(mode), nil)
	}
}

func confirmDestructive(opts Options) error {
	if opts.Confirmed {
		return nil
	}
	if opts.Confirm == nil {
		return engine.Wrap(engine.ErrConfirmationDenied, "action", "confirm",
			"destructive mode requires confirmation (pass --yes in non-interactive use)", nil)
	}
	if !opts.Confirm(confirmPrompt) {
		return engine.Wrap(engine.ErrConfirmationDenied, "action", "confirm", "declined by user", nil)
	}
	return nil
}

func (e *Engine) applyMove(ctx context.Context, pairs []match.Pair, opts Options, report *Report) error {
	if opts.MoveTarget == "" {
		return engine.Wrap(engine.ErrSetup, "action", "move", "target folder is required", nil)
	}
	if err := os.MkdirAll(opts.MoveTarget, 0o755); err != nil {
		return engine.Wrap(engine.ErrSetup, "action", "move", opts.MoveTarget, err)
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir, err := e.copyPair(opts.MoveTarget, pair)
		if err != nil {
			e.logger.Warn("pair not copied", "p1", pair.P1, "p2", pair.P2, "error", err)
			report.Failures = append(report.Failures, PairError{Pair: pair, Err: err})
			continue
		}
		report.Moved = append(report.Moved, dir)
	}
	return nil
}

// copyPair copies both files of a pair into the next numbered subfolder
// of target, leaving the originals in place.
func (e *Engine) copyPair(target string, pair match.Pair) (string, error) {
	n, err := quarantine.NextNumber(target)
	if err != nil {
		return "", engine.Wrap(engine.ErrFilesystem, "action", "number pair folder", target, err)
	}
	dir := filepath.Join(target, quarantine.DirName(n))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", engine.Wrap(engine.ErrFilesystem, "action", "create pair folder", dir, err)
	}

	name1 := filepath.Base(pair.P1)
	name2 := uniqueName(name1, filepath.Base(pair.P2))
	if err := fileutil.CopyFile(pair.P1, filepath.Join(dir, name1)); err != nil {
		_ = os.RemoveAll(dir)
		return "", engine.Wrap(engine.ErrFilesystem, "action", "copy", pair.P1, err)
	}
	if err := fileutil.CopyFile(pair.P2, filepath.Join(dir, name2)); err != nil {
		_ = os.RemoveAll(dir)
		return "", engine.Wrap(engine.ErrFilesystem, "action", "copy", pair.P2, err)
	}
	return dir, nil
}

func (e *Engine) applyDelete(ctx context.Context, pairs []match.Pair, opts Options, report *Report) error {
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		decision, err := Decide(pair, opts.ManualThreshold)
		if err != nil {
			report.Failures = append(report.Failures, PairError{Pair: pair, Err: err})
			continue
		}

		switch decision.Outcome {
		case OutcomeDeleteLoser:
			if err := os.Remove(decision.Delete); err != nil {
				err = engine.Wrap(engine.ErrFilesystem, "action", "delete", decision.Delete, err)
				e.logger.Warn("file not deleted", "path", decision.Delete, "error", err)
				report.Failures = append(report.Failures, PairError{Pair: pair, Err: err})
				continue
			}
			e.logger.Info("duplicate deleted", "kept", decision.Keep, "deleted", decision.Delete, "distance", pair.Distance)
			report.Kept = append(report.Kept, decision.Keep)
			report.Deleted = append(report.Deleted, decision.Delete)
		case OutcomeQuarantine:
			dir, err := e.quarantinePair(opts.ManualDir, pair, opts.ManualThreshold)
			if err != nil {
				e.logger.Warn("pair not quarantined", "p1", pair.P1, "p2", pair.P2, "error", err)
				report.Failures = append(report.Failures, PairError{Pair: pair, Err: err})
				continue
			}
			e.logger.Info("pair quarantined for manual review", "dir", dir, "distance", pair.Distance)
			report.Quarantined = append(report.Quarantined, dir)
		}
	}
	return nil
}

// quarantinePair moves both files into a fresh pair_NNN subfolder with a
// descriptor. If the second move fails the first file is put back so a
// failure never strands half a pair.
func (e *Engine) quarantinePair(manualDir string, pair match.Pair, manualThreshold int) (string, error) {
	if manualDir == "" {
		return "", engine.Wrap(engine.ErrSetup, "action", "quarantine", "manual-check directory is required", nil)
	}
	if err := os.MkdirAll(manualDir, 0o755); err != nil {
		return "", engine.Wrap(engine.ErrFilesystem, "action", "create manual dir", manualDir, err)
	}

	n, err := quarantine.NextNumber(manualDir)
	if err != nil {
		return "", engine.Wrap(engine.ErrFilesystem, "action", "number pair folder", manualDir, err)
	}
	dir := filepath.Join(manualDir, quarantine.DirName(n))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", engine.Wrap(engine.ErrFilesystem, "action", "create pair folder", dir, err)
	}

	name1 := filepath.Base(pair.P1)
	name2 := uniqueName(name1, filepath.Base(pair.P2))
	dest1 := filepath.Join(dir, name1)
	dest2 := filepath.Join(dir, name2)

	if err := fileutil.MoveFile(pair.P1, dest1); err != nil {
		_ = os.RemoveAll(dir)
		return "", engine.Wrap(engine.ErrFilesystem, "action", "move", pair.P1, err)
	}
	if err := fileutil.MoveFile(pair.P2, dest2); err != nil {
		_ = fileutil.MoveFile(dest1, pair.P1)
		_ = os.RemoveAll(dir)
		return "", engine.Wrap(engine.ErrFilesystem, "action", "move", pair.P2, err)
	}

	desc := &quarantine.Descriptor{
		Original1:       pair.P1,
		Original2:       pair.P2,
		File1:           name1,
		File2:           name2,
		Distance:        pair.Distance,
		ManualThreshold: manualThreshold,
		QuarantinedAt:   time.Now().UTC(),
	}
	descPath := filepath.Join(dir, quarantine.DescriptorName)
	if err := fileutil.WriteFileAtomic(descPath, desc.Encode(), 0o644); err != nil {
		_ = fileutil.MoveFile(dest1, pair.P1)
		_ = fileutil.MoveFile(dest2, pair.P2)
		_ = os.RemoveAll(dir)
		return "", engine.Wrap(engine.ErrFilesystem, "action", "write descriptor", descPath, err)
	}
	return dir, nil
}

// uniqueName disambiguates the second stored filename when both files of
// a pair share a base name.
func uniqueName(taken, candidate string) string {
	if candidate != taken {
		return candidate
	}
	ext := filepath.Ext(candidate)
	return candidate[:len(candidate)-len(ext)] + "_1" + ext
}
