// Package hashutil implements the BMFF-based hash assertion's hasher (spec
// §4.3): streaming SHA-256/384/512 over a reader given a resolved
// exclusion set, with v2 box-offset substitution, plus an incremental
// Hasher handle for callers that feed bytes piecewise. The verifier's
// timed-media path hashes each chunk's byte window with StreamHash rather
// than through Hasher.
package hashutil
