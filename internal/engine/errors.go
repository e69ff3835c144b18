// Package engine defines the error taxonomy shared by the duplicate
// detection pipeline. Components tag errors with one of the exported
// sentinel markers so callers can classify failures without inspecting
// message text.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSetup covers fatal preconditions: missing scan folder,
	// unreadable or locked database. Setup errors abort the run
	// before any mutation.
	ErrSetup = errors.New("setup error")
	// ErrDecode marks a file that is not a readable image. Recovered
	// per file; the file is excluded from matching.
	ErrDecode = errors.New("decode error")
	// ErrFilesystem marks a failed move, delete, or restore. Recovered
	// per pair; the batch continues.
	ErrFilesystem = errors.New("filesystem error")
	// ErrConfirmationDenied indicates the user declined a destructive
	// confirmation. A clean abort, not a failure.
	ErrConfirmationDenied = errors.New("confirmation denied")
)

// Wrap builds an error message that includes component context while
// tagging it with the provided marker for later classification. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the whole invocation.
// Only setup errors are fatal; everything else is aggregated into the
// run report.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSetup)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
