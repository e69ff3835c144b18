package hashing

import (
	"context"
	"io"
	"image"
	"log/slog"
	"os"
	"runtime"
	"sort"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// Register decoders beyond imaging's built-in set.
	_ "golang.org/x/image/webp"

	"dupicheck/internal/cache"
	"dupicheck/internal/engine"
)

// Hasher computes perceptual hashes with cache consultation. Safe for use
// by a single batch at a time.
type Hasher struct {
	store  *cache.Store
	logger *slog.Logger
}

// New returns a Hasher backed by the given store. A nil logger is valid.
func New(store *cache.Store, logger *slog.Logger) *Hasher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hasher{store: store, logger: logger}
}

// FileError records a per-file failure that excluded the file from
// matching without aborting the batch.
type FileError struct {
	Path string
	Err  error
}

// BatchReport summarizes one batch hashing run.
type BatchReport struct {
	// Records holds one entry per successfully hashed file, sorted by path.
	Records []cache.ImageRecord
	// CacheHits counts files served from the store without decoding.
	CacheHits int
	// Computed counts files that were decoded and hashed this run.
	Computed int
	// Failures lists files excluded from matching.
	Failures []FileError
}

// Hash returns the perceptual hash for a single file. A fresh cached
// record short-circuits decoding; otherwise the image is decoded, hashed,
// and the store updated.
func (h *Hasher) Hash(ctx context.Context, path string) (uint64, error) {
	out := h.examine(ctx, path)
	if out.err != nil {
		return 0, out.err
	}
	if out.computed {
		if err := h.store.PutRecord(ctx, &out.rec); err != nil {
			return 0, err
		}
	}
	return out.rec.Hash, nil
}

// HashAll hashes a batch of files across a bounded worker pool. Workers
// stat, read the cache, and decode independently; the calling goroutine is
// the sole writer applying cache updates, so records are never interleaved.
// Per-file failures land in the report; only store write errors and
// context cancellation abort the batch. The optional progress callback is
// invoked once per finished file from the calling goroutine.
func (h *Hasher) HashAll(ctx context.Context, paths []string, workers int, progress func(done, total int)) (*BatchReport, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(paths) && len(paths) > 0 {
		workers = len(paths)
	}

	// Cancel on any exit path so workers blocked on the results channel
	// are released if the batch aborts early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	results := make(chan outcome)

	group.Go(func() error {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- path:
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for path := range jobs {
				out := h.examine(gctx, path)
				select {
				case <-gctx.Done():
					return gctx.Err()
				case results <- out:
				}
			}
			return nil
		})
	}

	var waitErr error
	go func() {
		waitErr = group.Wait()
		close(results)
	}()

	report := &BatchReport{}
	done := 0
	for out := range results {
		done++
		if progress != nil {
			progress(done, len(paths))
		}
		if out.err != nil {
			h.logger.Warn("file excluded from matching", "path", out.path, "error", out.err)
			report.Failures = append(report.Failures, FileError{Path: out.path, Err: out.err})
			continue
		}
		if out.computed {
			if err := h.store.PutRecord(ctx, &out.rec); err != nil {
				return nil, err
			}
			report.Computed++
		} else {
			report.CacheHits++
		}
		report.Records = append(report.Records, out.rec)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	sort.Slice(report.Records, func(i, j int) bool {
		return report.Records[i].Path < report.Records[j].Path
	})
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Path < report.Failures[j].Path
	})
	return report, nil
}

type outcome struct {
	path     string
	rec      cache.ImageRecord
	computed bool
	err      error
}

// examine resolves one file to a hash record, via the cache when the
// stored fingerprint still matches. It never writes to the store.
func (h *Hasher) examine(ctx context.Context, path string) outcome {
	info, err := os.Stat(path)
	if err != nil {
		return outcome{path: path, err: engine.Wrap(engine.ErrDecode, "hashing", "stat", path, err)}
	}

	cached, err := h.store.GetRecord(ctx, path)
	if err != nil {
		return outcome{path: path, err: err}
	}
	if cached.Fresh(info) {
		return outcome{path: path, rec: *cached}
	}

	hash, err := computeHash(path)
	if err != nil {
		return outcome{path: path, err: engine.Wrap(engine.ErrDecode, "hashing", "decode", path, err)}
	}
	return outcome{
		path: path,
		rec: cache.ImageRecord{
			Path:      path,
			Size:      info.Size(),
			ModTimeNS: info.ModTime().UnixNano(),
			Hash:      hash,
		},
		computed: true,
	}
}

func computeHash(path string) (uint64, error) {
	img, err := openImage(path)
	if err != nil {
		return 0, err
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, err
	}
	return hash.GetHash(), nil
}

func openImage(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}
