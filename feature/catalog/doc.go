// Package catalog models the server-published asset catalog and resolves it per region.
//
// A Manifest is the immutable snapshot of one (region, version) catalog: the set of
// entries the server currently declares, each with a path, a content digest, a size
// and a resource type. The Resolver fetches and decodes the remote documents that
// describe the catalog for each of the three deployments (CN, GL, JP).
//
// # Regions
//
// Each region publishes its catalog in a different shape and digests content with a
// different scheme:
//
//   - GL: a single JSON resource list, MD5 digests. The resource version may be
//     supplied by the caller; otherwise the latest published version is resolved first.
//   - JP: three catalog documents (bundles, media, tables) under a versioned base
//     URL, CRC32 digests. The version is always auto-resolved.
//   - CN: a JSON manifest of bundle/media/table groups, MD5 digests.
//
// Region-specific behavior is expressed as capability lookups on the Region value
// (HashKind, SupportsExtraction) rather than per-region types.
//
// # Failure modes
//
// Resolve fails fast: an unreachable endpoint or non-2xx status surfaces as
// ErrCatalogUnavailable, an undecodable body as ErrCatalogParse. Both abort the
// run before any download is scheduled, since the manifest is the correctness
// basis for everything downstream.
package catalog
