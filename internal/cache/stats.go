package cache

import (
	"context"
	"fmt"
	"os"
)

// Stats summarizes the state of a scan database.
type Stats struct {
	Entries      int64
	IgnoredPairs int64
	Path         string
	FileSize     int64
}

// Stats reports entry counts and the size of the database file.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	ctx = ensureContext(ctx)
	stats := &Stats{Path: s.path}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM images`).Scan(&stats.Entries); err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM ignored_pairs`).Scan(&stats.IgnoredPairs); err != nil {
		return nil, fmt.Errorf("count ignored pairs: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.FileSize = info.Size()
	}
	return stats, nil
}
