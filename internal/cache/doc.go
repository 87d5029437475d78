// Package cache stores finished temporal indexes on disk so identical runs
// skip the pipeline.
//
// Entries are content addressed: the key is a SHA-256 over the source text,
// the recognizer engine, the pipeline options fingerprint and a digest of the
// raw tokens. Each entry is one JSON file written through a temp file and a
// rename, so readers never observe partial writes. A SQLite index
// (index.db) tracks sizes, hit counts and last use for `cache stats` and
// least-recently-used pruning.
//
// GetOrCompute runs the compute function at most once per key: in-process
// callers share one flight, and a per-key file lock serializes separate
// processes, which re-check the entry after acquiring it.
package cache
