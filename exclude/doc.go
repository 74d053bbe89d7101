// Package exclude implements the BMFF-based hash assertion's exclusion
// resolver: translating a list of high-level ExclusionsMap rules, plus the
// mandatory C2PA UUID box exclusions, into a sorted, coalesced list of
// absolute byte ranges the hasher (package hashutil) must skip — and, in
// v2 mode, the per-range box-offset substitution the hasher feeds into the
// digest in place of skipped bytes, per spec §4.2/§4.3.
package exclude
