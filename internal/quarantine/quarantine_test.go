package quarantine_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dupicheck/internal/quarantine"
)

func TestDescriptorRoundTrip(t *testing.T) {
	desc := &quarantine.Descriptor{
		Original1:       "/photos/a.jpg",
		Original2:       "/photos/sub/a.jpg",
		File1:           "a.jpg",
		File2:           "a_1.jpg",
		Distance:        4,
		ManualThreshold: 2,
		QuarantinedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	parsed, err := quarantine.Parse(desc.Encode())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *parsed != *desc {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", parsed, desc)
	}
}

func TestParseRejectsMissingOriginals(t *testing.T) {
	if _, err := quarantine.Parse([]byte("distance: 3\n")); err == nil {
		t.Fatal("expected error for descriptor without originals")
	}
}

func TestNextNumberSkipsExisting(t *testing.T) {
	dir := t.TempDir()

	n, err := quarantine.NextNumber(dir)
	if err != nil || n != 1 {
		t.Fatalf("empty dir should start at 1: %d %v", n, err)
	}

	for _, name := range []string{"pair_001", "pair_007", "unrelated"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	n, err = quarantine.NextNumber(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Fatalf("expected next number 8 after pair_007, got %d", n)
	}
}

func TestNextNumberMissingDir(t *testing.T) {
	n, err := quarantine.NextNumber(filepath.Join(t.TempDir(), "nope"))
	if err != nil || n != 1 {
		t.Fatalf("missing dir should yield 1: %d %v", n, err)
	}
}

func TestListReturnsOnlyPairDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pair_002", "pair_001", "stray"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "pair_notadir"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := quarantine.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"pair_001", "pair_002"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("unexpected listing: %v", names)
	}
}
