// Package storage provides the persistent locations the downloader writes to.
//
// # Local stores
//
// Local wraps the three directory-like stores of a run: the raw store
// (downloaded catalog content, laid out by catalog path), the extracted store
// (extraction output) and the temp store (scratch space). The only contract the
// pipeline relies on is atomic-write and read-back: CommitRaw stages content in
// a temp file on the same filesystem and renames it into place, so a crash mid
// write never leaves a partially written file observable under its final path.
//
// # Mirror
//
// Client is an optional object-storage mirror built on the MinIO Go client
// (supports AWS S3 and self-hosted MinIO instances). When configured, committed
// raw assets are additionally uploaded to a bucket. The interface is small so
// it can be mocked for unit testing (see core/storage/mocks).
package storage
