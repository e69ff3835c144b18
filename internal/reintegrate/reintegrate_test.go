package reintegrate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dupicheck/internal/action"
	"dupicheck/internal/cache"
	"dupicheck/internal/match"
	"dupicheck/internal/quarantine"
	"dupicheck/internal/reintegrate"
	"dupicheck/internal/testsupport"
)

// quarantineFixture routes one pair through delete mode's manual-review
// branch and returns the original paths plus the manual dir.
func quarantineFixture(t *testing.T, dir string) (p1, p2, manualDir string) {
	t.Helper()
	p1 = filepath.Join(dir, "a.jpg")
	p2 = filepath.Join(dir, "sub", "b.jpg")
	testsupport.WriteFile(t, p1, 100)
	testsupport.WriteFile(t, p2, 50)
	manualDir = filepath.Join(dir, "manual_check")

	eng := action.New(nil)
	report, err := eng.Apply(context.Background(),
		[]match.Pair{{P1: p1, P2: p2, Distance: 5}},
		action.ModeDelete,
		action.Options{ManualDir: manualDir, ManualThreshold: 2, Confirmed: true})
	if err != nil {
		t.Fatalf("quarantine setup failed: %v", err)
	}
	if len(report.Quarantined) != 1 {
		t.Fatalf("expected quarantined pair, got %+v", report)
	}
	return p1, p2, manualDir
}

func TestQuarantineReintegrationRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()
	p1, p2, manualDir := quarantineFixture(t, dir)

	report, err := reintegrate.Run(ctx, manualDir, store, reintegrate.Options{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Restored) != 2 {
		t.Fatalf("expected both files restored, got %+v", report)
	}
	for _, path := range []string{p1, p2} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("file not restored to original path: %v", err)
		}
	}
	if len(report.RemovedDirs) != 1 {
		t.Fatalf("expected pair folder removal, got %+v", report)
	}
	if _, err := os.Stat(report.RemovedDirs[0]); !os.IsNotExist(err) {
		t.Fatalf("pair folder should be gone, stat err: %v", err)
	}

	// Ledger updated: a rescan must not re-flag the pair.
	set, err := store.IgnoredSet(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := set[cache.CanonicalPair(p1, p2)]; !ok {
		t.Fatal("restored pair missing from ignore ledger")
	}
	pairs := match.FindDuplicates([]cache.ImageRecord{
		{Path: p1, Hash: 1},
		{Path: p2, Hash: 1},
	}, 5, set)
	if len(pairs) != 0 {
		t.Fatalf("reintegrated pair flagged again: %v", pairs)
	}
}

func TestRestoreConflictLeavesBothFiles(t *testing.T) {
	dir := t.TempDir()
	store := testsupport.MustOpenStore(t)
	p1, p2, manualDir := quarantineFixture(t, dir)

	// Occupy one original path with different content.
	testsupport.WriteFile(t, p1, 7)

	report, err := reintegrate.Run(context.Background(), manualDir, store, reintegrate.Options{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0].Path != p1 {
		t.Fatalf("expected conflict on %s, got %+v", p1, report.Conflicts)
	}

	// Occupying file untouched.
	info, err := os.Stat(p1)
	if err != nil || info.Size() != 7 {
		t.Fatalf("occupying file modified: %v %v", info, err)
	}
	// Quarantined copy untouched too, and the pair folder retained.
	dirs, err := quarantine.List(manualDir)
	if err != nil || len(dirs) != 1 {
		t.Fatalf("pair folder should remain after conflict: %v %v", dirs, err)
	}
	if _, err := os.Stat(filepath.Join(manualDir, dirs[0], "a.jpg")); err != nil {
		t.Fatalf("quarantined file should remain: %v", err)
	}

	// The other file restored fine, but the partly restored pair is not
	// marked ignored.
	if _, err := os.Stat(p2); err != nil {
		t.Fatalf("unconflicted file should be restored: %v", err)
	}
	if len(report.Marked) != 0 {
		t.Fatalf("partial restore must not mark the pair ignored: %+v", report.Marked)
	}
}

func TestDryRunPerformsNoMutation(t *testing.T) {
	dir := t.TempDir()
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()
	p1, p2, manualDir := quarantineFixture(t, dir)

	report, err := reintegrate.Run(ctx, manualDir, store, reintegrate.Options{DryRun: true}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Intentions reported.
	if len(report.Restored) != 2 || len(report.Marked) != 1 || len(report.RemovedDirs) != 1 {
		t.Fatalf("dry run should report intended actions: %+v", report)
	}
	// Nothing actually happened.
	for _, path := range []string{p1, p2} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("dry run restored a file: %s", path)
		}
	}
	dirs, err := quarantine.List(manualDir)
	if err != nil || len(dirs) != 1 {
		t.Fatalf("dry run removed the pair folder: %v %v", dirs, err)
	}
	ignored, err := store.ListIgnored(ctx)
	if err != nil || len(ignored) != 0 {
		t.Fatalf("dry run touched the ledger: %v %v", ignored, err)
	}
}

func TestNoMarkAndKeepFolders(t *testing.T) {
	dir := t.TempDir()
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()
	p1, p2, manualDir := quarantineFixture(t, dir)

	report, err := reintegrate.Run(ctx, manualDir, store, reintegrate.Options{NoMark: true, KeepFolders: true}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Restored) != 2 {
		t.Fatalf("expected restore to proceed: %+v", report)
	}
	_ = p1
	_ = p2

	ignored, err := store.ListIgnored(ctx)
	if err != nil || len(ignored) != 0 {
		t.Fatalf("NoMark must leave the ledger alone: %v %v", ignored, err)
	}
	dirs, err := quarantine.List(manualDir)
	if err != nil || len(dirs) != 1 {
		t.Fatalf("KeepFolders must retain the pair folder: %v %v", dirs, err)
	}
}

func TestMissingDescriptorReportedAndRunContinues(t *testing.T) {
	dir := t.TempDir()
	store := testsupport.MustOpenStore(t)
	_, _, manualDir := quarantineFixture(t, dir)

	// A stray pair folder without a descriptor.
	if err := os.MkdirAll(filepath.Join(manualDir, "pair_000"), 0o755); err != nil {
		t.Fatal(err)
	}

	report, err := reintegrate.Run(context.Background(), manualDir, store, reintegrate.Options{}, nil)
	if err != nil {
		t.Fatalf("Run must continue past broken folders: %v", err)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("expected one descriptor failure, got %+v", report.Failures)
	}
	if len(report.Restored) != 2 {
		t.Fatalf("healthy pair should still be restored: %+v", report)
	}
}

func TestRunMissingManualDir(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	_, err := reintegrate.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), store, reintegrate.Options{}, nil)
	if err == nil {
		t.Fatal("expected setup error for missing manual dir")
	}
}
