package action

import (
	"os"

	"dupicheck/internal/engine"
	"dupicheck/internal/match"
)

// Outcome tags what delete mode should do with one pair.
type Outcome int

const (
	// OutcomeDeleteLoser keeps the larger file and deletes the smaller.
	OutcomeDeleteLoser Outcome = iota
	// OutcomeQuarantine routes the pair to manual review.
	OutcomeQuarantine
)

// Decision is the resolved policy for one pair, consumed uniformly by
// Apply regardless of outcome.
type Decision struct {
	Outcome Outcome
	Keep    string
	Delete  string
}

// Decide applies the delete-mode policy: pairs whose distance exceeds the
// manual threshold go to quarantine; otherwise the larger file is kept
// and the smaller deleted. Equal sizes keep the canonical-first path so
// the choice is deterministic.
func Decide(pair match.Pair, manualThreshold int) (Decision, error) {
	if pair.Distance > manualThreshold {
		return Decision{Outcome: OutcomeQuarantine}, nil
	}

	info1, err := os.Stat(pair.P1)
	if err != nil {
		return Decision{}, engine.Wrap(engine.ErrFilesystem, "action", "stat", pair.P1, err)
	}
	info2, err := os.Stat(pair.P2)
	if err != nil {
		return Decision{}, engine.Wrap(engine.ErrFilesystem, "action", "stat", pair.P2, err)
	}

	if info1.Size() >= info2.Size() {
		return Decision{Outcome: OutcomeDeleteLoser, Keep: pair.P1, Delete: pair.P2}, nil
	}
	return Decision{Outcome: OutcomeDeleteLoser, Keep: pair.P2, Delete: pair.P1}, nil
}
