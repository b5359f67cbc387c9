// Package state persists the record of previously synchronized assets.
//
// The Store is the sole owner of AssetRecord rows: the download scheduler and
// the extraction dispatcher request mutations through it and never touch the
// database directly, which keeps the persisted view consistent under concurrent
// workers. Reads for diffing go through Snapshot, which returns an immutable
// per-region map taken before any worker starts.
//
// # Lifecycle
//
// A record is created on the first successful download of a path and updated on
// every subsequent re-download. Records are never deleted implicitly: a path
// absent from the newest manifest is merely reported stale, and stays until an
// explicit Prune succeeds.
//
// # Concurrency
//
// Mutations are linearized by a store-level mutex. Distinct paths never
// legitimately race (the diff engine schedules each path at most once per run),
// so the lock is a safety backstop, and the critical section covers exactly one
// record update.
package state
