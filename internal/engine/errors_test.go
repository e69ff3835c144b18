package engine_test

import (
	"errors"
	"strings"
	"testing"

	"dupicheck/internal/engine"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := engine.Wrap(engine.ErrFilesystem, "action", "move", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, engine.ErrFilesystem) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"action", "move", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := engine.Wrap(nil, "action", "delete", "", nil)
	if !errors.Is(err, engine.ErrFilesystem) {
		t.Fatalf("expected filesystem marker by default, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	setup := engine.Wrap(engine.ErrSetup, "cache", "open", "database locked", nil)
	if !engine.IsFatal(setup) {
		t.Fatalf("expected setup error to be fatal: %v", setup)
	}
	decode := engine.Wrap(engine.ErrDecode, "hashing", "decode", "corrupt header", nil)
	if engine.IsFatal(decode) {
		t.Fatalf("decode error must not be fatal: %v", decode)
	}
	if engine.IsFatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
}
