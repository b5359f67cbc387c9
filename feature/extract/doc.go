// Package extract routes downloaded assets to the extraction capability
// matching their resource type and region.
//
// The binary parsers themselves (Unity bundle unpacking, schema-aware table
// decoding) are external capabilities registered on a Registry; this package
// only decides who gets which file and records the outcome. Bundle and table
// extraction is only supported for the JP deployment; any other combination,
// and any supported combination whose capability is not installed, resolves to
// an Unsupported outcome, which is a recorded no-op rather than an error.
//
// Extraction runs as a second bounded-concurrency pass after all downloads
// settle, so extraction throughput never throttles ingestion. Per-entry
// extraction failures are recorded on the state store and reported, but never
// abort the batch. Dispatch is idempotent: an entry already extracted at an
// unchanged hash is skipped unless the caller forces re-extraction.
package extract
