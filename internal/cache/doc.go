// Package cache persists per-folder scan state in SQLite: one record per
// hashed image (path, size, mtime, perceptual hash) and the ledger of
// ignored pairs a human has already resolved.
//
// The store is scoped to a single folder's database file and a single
// process. A best-effort advisory lock beside the database rejects
// concurrent invocations against the same folder; beyond that, multi-process
// coordination is out of scope.
package cache
