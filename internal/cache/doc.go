// Package cache provides SQLite-based storage for validation results.
//
// The cache lets repeated runs over the same documentation tree skip
// URLs that were recently verified. Only successful outcomes are ever
// served from the cache; failures are always re-verified, because a
// broken link that came back to life should clear on the next run.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a
// flat file because:
// 1. No external dependencies - the cache is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. UPSERT and age-window queries come for free
// 4. WAL mode keeps concurrent runs from corrupting the file
package cache
