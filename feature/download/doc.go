// Package download executes the Download portion of a run plan with a bounded
// worker pool.
//
// Each entry is fetched from the region's content endpoint and verified against
// the digest the catalog declared for it. A network error, a non-success status
// or a digest mismatch all count as transient (content can change server-side
// mid sync, transfers can corrupt) and are retried with exponential backoff up
// to the per-entry retry ceiling; an entry that exhausts its retries is marked
// failed permanently, which degrades the run but never aborts it.
//
// On success the bytes are committed atomically to the raw store, the state
// record is updated through the state store, and the asset is optionally
// uploaded to the object-storage mirror. The commit order (file first, record
// second) plus the atomic rename guarantees a crash never produces a record
// that points at absent or partial content; a run interrupted anywhere is
// simply re-run and the diff engine recomputes what is still missing.
//
// Before fetching, an entry whose raw file already exists with a matching
// digest is committed from disk without touching the network. This is what
// makes re-running after an interrupt cheap.
package download
