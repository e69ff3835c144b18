package action_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dupicheck/internal/action"
	"dupicheck/internal/engine"
	"dupicheck/internal/match"
	"dupicheck/internal/quarantine"
	"dupicheck/internal/testsupport"
)

func TestReportModeNeverMutates(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 100)
	testsupport.WriteFile(t, p2, 50)

	eng := action.New(nil)
	pairs := []match.Pair{{P1: p1, P2: p2, Distance: 1}}
	report, err := eng.Apply(context.Background(), pairs, action.ModeReport, action.Options{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(report.Pairs) != 1 {
		t.Fatalf("expected pair list back, got %+v", report)
	}
	for _, path := range []string{p1, p2} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("report mode must not touch files: %v", err)
		}
	}
}

func TestMoveModeCopiesWithoutDeleting(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 100)
	testsupport.WriteFile(t, p2, 50)
	target := filepath.Join(dir, "dups")

	eng := action.New(nil)
	pairs := []match.Pair{{P1: p1, P2: p2, Distance: 2}}
	report, err := eng.Apply(context.Background(), pairs, action.ModeMove, action.Options{MoveTarget: target})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(report.Moved) != 1 {
		t.Fatalf("expected one moved pair folder, got %+v", report)
	}

	// Originals intact.
	for _, path := range []string{p1, p2} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("move mode deleted a source file: %v", err)
		}
	}
	// Copies present.
	pairDir := report.Moved[0]
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(pairDir, name)); err != nil {
			t.Fatalf("expected copy %s in %s: %v", name, pairDir, err)
		}
	}
}

func TestDeleteKeepsLargest(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.jpg")
	small := filepath.Join(dir, "small.jpg")
	testsupport.WriteFile(t, big, 100)
	testsupport.WriteFile(t, small, 50)

	eng := action.New(nil)
	pairs := []match.Pair{{P1: big, P2: small, Distance: 1}}
	report, err := eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir:       filepath.Join(dir, "manual_check"),
		ManualThreshold: 2,
		Confirmed:       true,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if _, err := os.Stat(big); err != nil {
		t.Fatalf("larger file must remain: %v", err)
	}
	if _, err := os.Stat(small); !os.IsNotExist(err) {
		t.Fatalf("smaller file must be deleted, stat err: %v", err)
	}
	if len(report.Kept) != 1 || report.Kept[0] != big {
		t.Fatalf("unexpected kept list: %v", report.Kept)
	}
	if len(report.Deleted) != 1 || report.Deleted[0] != small {
		t.Fatalf("unexpected deleted list: %v", report.Deleted)
	}
}

func TestDeleteQuarantinesAboveManualThreshold(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 100)
	testsupport.WriteFile(t, p2, 50)
	manualDir := filepath.Join(dir, "manual_check")

	eng := action.New(nil)
	pairs := []match.Pair{{P1: p1, P2: p2, Distance: 4}}
	report, err := eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir:       manualDir,
		ManualThreshold: 2,
		Confirmed:       true,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(report.Quarantined) != 1 || len(report.Deleted) != 0 {
		t.Fatalf("expected quarantine, got %+v", report)
	}

	// Originals removed from source.
	for _, path := range []string{p1, p2} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("quarantined original still in place: %s", path)
		}
	}

	pairDir := report.Quarantined[0]
	if filepath.Base(pairDir) != "pair_001" {
		t.Fatalf("expected pair_001, got %s", pairDir)
	}
	for _, name := range []string{"a.jpg", "b.jpg", quarantine.DescriptorName} {
		if _, err := os.Stat(filepath.Join(pairDir, name)); err != nil {
			t.Fatalf("missing %s in quarantine folder: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(pairDir, quarantine.DescriptorName))
	if err != nil {
		t.Fatal(err)
	}
	desc, err := quarantine.Parse(data)
	if err != nil {
		t.Fatalf("descriptor unreadable: %v", err)
	}
	if desc.Original1 != p1 || desc.Original2 != p2 || desc.Distance != 4 || desc.ManualThreshold != 2 {
		t.Fatalf("descriptor contents wrong: %+v", desc)
	}
}

func TestQuarantineNumberingSkipsExistingFolders(t *testing.T) {
	dir := t.TempDir()
	manualDir := filepath.Join(dir, "manual_check")
	if err := os.MkdirAll(filepath.Join(manualDir, "pair_003"), 0o755); err != nil {
		t.Fatal(err)
	}

	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 10)
	testsupport.WriteFile(t, p2, 20)

	eng := action.New(nil)
	pairs := []match.Pair{{P1: p1, P2: p2, Distance: 9}}
	report, err := eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir:       manualDir,
		ManualThreshold: 2,
		Confirmed:       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Quarantined) != 1 || filepath.Base(report.Quarantined[0]) != "pair_004" {
		t.Fatalf("numbering must not collide with existing folders: %+v", report.Quarantined)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 10)
	testsupport.WriteFile(t, p2, 20)

	eng := action.New(nil)
	pairs := []match.Pair{{P1: p1, P2: p2, Distance: 0}}

	// Non-interactive refusal.
	_, err := eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir: filepath.Join(dir, "manual_check"),
	})
	if !errors.Is(err, engine.ErrConfirmationDenied) {
		t.Fatalf("expected confirmation denial, got %v", err)
	}

	// Declined prompt.
	declined := false
	_, err = eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir: filepath.Join(dir, "manual_check"),
		Confirm: func(string) bool {
			declined = true
			return false
		},
	})
	if !errors.Is(err, engine.ErrConfirmationDenied) {
		t.Fatalf("expected confirmation denial after decline, got %v", err)
	}
	if !declined {
		t.Fatal("prompt was not invoked")
	}

	// Nothing was touched in either attempt.
	for _, path := range []string{p1, p2} {
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("denied confirmation must not mutate: %v", statErr)
		}
	}

	// Accepted prompt proceeds.
	report, err := eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir: filepath.Join(dir, "manual_check"),
		Confirm:   func(string) bool { return true },
	})
	if err != nil {
		t.Fatalf("accepted confirmation should proceed: %v", err)
	}
	if len(report.Deleted) != 1 {
		t.Fatalf("expected one deletion, got %+v", report)
	}
}

func TestDeleteContinuesPastVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	gone := filepath.Join(dir, "gone.jpg")
	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 100)
	testsupport.WriteFile(t, p2, 50)

	eng := action.New(nil)
	pairs := []match.Pair{
		{P1: gone, P2: p1, Distance: 0},
		{P1: p1, P2: p2, Distance: 1},
	}
	report, err := eng.Apply(context.Background(), pairs, action.ModeDelete, action.Options{
		ManualDir:       filepath.Join(dir, "manual_check"),
		ManualThreshold: 2,
		Confirmed:       true,
	})
	if err != nil {
		t.Fatalf("per-pair errors must not abort the batch: %v", err)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("expected one failure, got %+v", report.Failures)
	}
	if !errors.Is(report.Failures[0].Err, engine.ErrFilesystem) {
		t.Fatalf("failure should carry filesystem marker: %v", report.Failures[0].Err)
	}
	if len(report.Deleted) != 1 || report.Deleted[0] != p2 {
		t.Fatalf("second pair should still be processed: %+v", report)
	}
}

func TestDecideTieKeepsCanonicalFirst(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.jpg")
	p2 := filepath.Join(dir, "b.jpg")
	testsupport.WriteFile(t, p1, 50)
	testsupport.WriteFile(t, p2, 50)

	decision, err := action.Decide(match.Pair{P1: p1, P2: p2, Distance: 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != action.OutcomeDeleteLoser {
		t.Fatalf("expected delete outcome, got %v", decision.Outcome)
	}
	if decision.Keep != p1 || decision.Delete != p2 {
		t.Fatalf("tie must keep canonical-first path: %+v", decision)
	}
}
