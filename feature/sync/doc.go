// Package sync orchestrates one synchronization run and decides, per catalog
// entry, what the run has to do about it.
//
// # Diff engine
//
// Diff compares a resolved (and possibly filtered) manifest against a snapshot
// of the local state store and produces a deterministic, ascending-path plan:
//
//	no local record, or hash differs          -> Download
//	hash equal, extraction pending or failed  -> ReExtractOnly
//	hash equal, extracted                     -> SkipUnchanged
//
// Local records whose path is absent from the manifest are reported stale,
// separately from the plan. The diff never deletes anything; pruning stale
// records is an explicit, caller-invoked operation.
//
// # Pipeline
//
// Service.Run wires the full pipeline: resolve catalog, filter, diff, download
// with bounded concurrency, then extract as a second bounded pass after all
// downloads settle. Fatal errors (catalog unavailable or unparsable, missing
// search capability) abort before scheduling; per-entry failures accumulate
// into the run summary and never abort the run.
package sync
