package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// ImageRecord is one cached hash entry. Path is the absolute file path and
// acts as the cache key; Size plus ModTimeNS form the staleness
// fingerprint.
type ImageRecord struct {
	Path      string
	Size      int64
	ModTimeNS int64
	Hash      uint64
	HashedAt  time.Time
}

// Fresh reports whether the record's fingerprint still matches the file's
// current size and modification time. A record that is not fresh must never
// be trusted; the hash has to be recomputed.
func (r *ImageRecord) Fresh(info fs.FileInfo) bool {
	if r == nil || info == nil {
		return false
	}
	return r.Size == info.Size() && r.ModTimeNS == info.ModTime().UnixNano()
}

// GetRecord fetches the cached record for path, or nil when absent.
func (s *Store) GetRecord(ctx context.Context, path string) (*ImageRecord, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT path, size, mtime_ns, hash, hashed_at FROM images WHERE path = ?`, path)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// PutRecord inserts or replaces the record for rec.Path. The write commits
// before PutRecord returns, so an interrupted run never leaves a torn
// record.
func (s *Store) PutRecord(ctx context.Context, rec *ImageRecord) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if strings.TrimSpace(rec.Path) == "" {
		return errors.New("record path is empty")
	}
	hashedAt := rec.HashedAt
	if hashedAt.IsZero() {
		hashedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO images (path, size, mtime_ns, hash, hashed_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             size = excluded.size,
             mtime_ns = excluded.mtime_ns,
             hash = excluded.hash,
             hashed_at = excluded.hashed_at`,
		rec.Path,
		rec.Size,
		rec.ModTimeNS,
		int64(rec.Hash),
		hashedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// DeleteRecord removes the cached record for path, if any.
func (s *Store) DeleteRecord(ctx context.Context, path string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM images WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// PruneExcept drops every cached record whose path is not in keep. Called
// after a scan so entries for vanished files do not accumulate; pruning is
// lazy and skipping it is harmless because stale records are never trusted.
func (s *Store) PruneExcept(ctx context.Context, keep []string) (int64, error) {
	ctx = ensureContext(ctx)
	keepSet := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		keepSet[p] = struct{}{}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM images`)
	if err != nil {
		return 0, fmt.Errorf("list record paths: %w", err)
	}
	defer rows.Close()

	var doomed []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, fmt.Errorf("scan record path: %w", err)
		}
		if _, ok := keepSet[path]; !ok {
			doomed = append(doomed, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate record paths: %w", err)
	}

	var pruned int64
	for _, path := range doomed {
		res, err := s.execWithRetry(ctx, `DELETE FROM images WHERE path = ?`, path)
		if err != nil {
			return pruned, fmt.Errorf("prune record: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			pruned += n
		}
	}
	return pruned, nil
}

func scanRecord(row *sql.Row) (*ImageRecord, error) {
	var (
		rec      ImageRecord
		hash     int64
		hashedAt string
	)
	if err := row.Scan(&rec.Path, &rec.Size, &rec.ModTimeNS, &hash, &hashedAt); err != nil {
		return nil, err
	}
	rec.Hash = uint64(hash)
	if ts, err := time.Parse(time.RFC3339Nano, hashedAt); err == nil {
		rec.HashedAt = ts
	}
	return &rec, nil
}
