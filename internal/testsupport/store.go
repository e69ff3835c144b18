package testsupport

import (
	"path/filepath"
	"testing"

	"dupicheck/internal/cache"
)

// MustOpenStore opens a cache.Store backed by a fresh temp database and
// registers cleanup.
func MustOpenStore(t testing.TB) *cache.Store {
	t.Helper()

	store, err := cache.Open(filepath.Join(t.TempDir(), ".dupicheck.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
