package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PairKey identifies an unordered pair of files in canonical order.
type PairKey struct {
	P1 string
	P2 string
}

// CanonicalPair orders two paths lexicographically so (A,B) and (B,A)
// always map to the same key.
func CanonicalPair(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{P1: a, P2: b}
}

// IgnoredPair is one ledger entry: a pair a human has resolved and that
// must never be flagged again.
type IgnoredPair struct {
	ID      int64
	P1      string
	P2      string
	AddedAt time.Time
}

// AddIgnored records the pair in the ledger. Adding an already-ignored
// pair is a no-op; the ledger never holds duplicates.
func (s *Store) AddIgnored(ctx context.Context, a, b string) error {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return errors.New("ignored pair paths must not be empty")
	}
	if a == b {
		return errors.New("ignored pair must reference two distinct files")
	}
	key := CanonicalPair(a, b)
	_, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO ignored_pairs (p1, p2, added_at) VALUES (?, ?, ?)`,
		key.P1, key.P2, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("add ignored pair: %w", err)
	}
	return nil
}

// ListIgnored returns every ledger entry ordered by insertion.
func (s *Store) ListIgnored(ctx context.Context) ([]IgnoredPair, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, p1, p2, added_at FROM ignored_pairs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list ignored pairs: %w", err)
	}
	defer rows.Close()

	var pairs []IgnoredPair
	for rows.Next() {
		var (
			pair    IgnoredPair
			addedAt string
		)
		if err := rows.Scan(&pair.ID, &pair.P1, &pair.P2, &addedAt); err != nil {
			return nil, fmt.Errorf("scan ignored pair: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			pair.AddedAt = ts
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ignored pairs: %w", err)
	}
	return pairs, nil
}

// IgnoredSet returns the ledger as a lookup set keyed by canonical pair.
func (s *Store) IgnoredSet(ctx context.Context) (map[PairKey]struct{}, error) {
	pairs, err := s.ListIgnored(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[PairKey]struct{}, len(pairs))
	for _, pair := range pairs {
		set[CanonicalPair(pair.P1, pair.P2)] = struct{}{}
	}
	return set, nil
}

// RemoveIgnoredPair deletes the ledger entry for the two paths, in either
// order. Returns false when no such entry exists.
func (s *Store) RemoveIgnoredPair(ctx context.Context, a, b string) (bool, error) {
	key := CanonicalPair(a, b)
	res, err := s.execWithRetry(ctx,
		`DELETE FROM ignored_pairs WHERE p1 = ? AND p2 = ?`, key.P1, key.P2)
	if err != nil {
		return false, fmt.Errorf("remove ignored pair: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove ignored pair: %w", err)
	}
	return affected > 0, nil
}

// RemoveIgnoredIndex deletes the ledger entry at the given 1-based
// position in ListIgnored order and returns it.
func (s *Store) RemoveIgnoredIndex(ctx context.Context, index int) (*IgnoredPair, error) {
	pairs, err := s.ListIgnored(ctx)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(pairs) {
		return nil, fmt.Errorf("ignored pair index %d out of range (1-%d)", index, len(pairs))
	}
	pair := pairs[index-1]
	if _, err := s.RemoveIgnoredPair(ctx, pair.P1, pair.P2); err != nil {
		return nil, err
	}
	return &pair, nil
}
