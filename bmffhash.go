// Package bmffhash implements the C2PA BMFF-based hash assertion
// (c2pa.hash.bmff): generating and verifying a Merkle-tree-structured hash
// of an ISOBMFF/MP4 asset's content, covering single-file, fragmented, and
// DASH multi-segment layouts. It is a thin façade over the generate and
// verify packages, which do the actual work; this package exists so a
// caller can depend on one import and one entry point per operation.
package bmffhash

import (
	"io"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/generate"
	"github.com/c2pa-labs/bmffhash/verify"
)

// BmffHash is the in-memory assertion value every operation in this
// package reads from and writes to.
type BmffHash = assertion.BmffHash

// New builds a BmffHash with no exclusions and no hash yet. See
// assertion.New for argument semantics.
func New(name, alg string, url *string) *BmffHash {
	return assertion.New(name, alg, url)
}

// GenHash computes and embeds path's hash assertion: a whole-file digest
// for a non-fragmented asset, or a Merkle tree over per-fragment windows,
// embedded back into path as C2PA UUID boxes, for a fragmented one.
func GenHash(h *BmffHash, path string, alg string, maxDepth int) error {
	return generate.GenHash(h, path, alg, maxDepth)
}

// RegenHash recomputes h's hash against h.Path(), the asset most recently
// passed to GenHash, using h's existing alg and exclusions.
func RegenHash(h *BmffHash, maxDepth int) error {
	return generate.RegenHash(h, maxDepth)
}

// AddMerkleForMPD builds the Merkle hash assertion for a DASH
// presentation: it copies srcDir's init segment and media segments into
// outDir, embeds a placeholder Merkle UUID box into each copied segment,
// and backpatches each with its real proof. It returns the copied init
// segment's path for a following UpdateMPDHash call.
func AddMerkleForMPD(h *BmffHash, alg, srcDir, outDir string, localID uint32, uniqueID *uint32, maxDepth int) (string, error) {
	return generate.AddMerkleForMPD(h, alg, srcDir, outDir, localID, uniqueID, maxDepth)
}

// UpdateMPDHash stamps h's MerkleMap.InitHash with initPath's actual
// digest, once the init segment's final bytes are known. Call this after
// AddMerkleForMPD and after any out-of-band edits to the init segment.
func UpdateMPDHash(h *BmffHash, initPath string, alg string) error {
	return generate.UpdateMPDHash(h, initPath, alg)
}

// VerifyStreamHash verifies h against a complete asset: a whole-file
// asset, a single file carrying fragments, or a file carrying per-chunk
// Merkle boxes under a moov/stbl (timed-media) layout. algHint is used
// only when h carries no explicit algorithm of its own.
func VerifyStreamHash(h *BmffHash, r io.ReadSeeker, algHint *string) error {
	return verify.VerifyStreamHash(h, r, algHint)
}

// VerifyInMemoryHash is VerifyStreamHash for an asset already fully
// resident in memory.
func VerifyInMemoryHash(h *BmffHash, data []byte, algHint *string) error {
	return verify.VerifyInMemoryHash(h, data, algHint)
}

// VerifyStreamSegment verifies a DASH init segment against h.MerkleMap's
// InitHash and, when fragment is non-nil, verifies that segment's
// embedded Merkle proof against h's tree.
func VerifyStreamSegment(h *BmffHash, init io.ReadSeeker, fragment io.ReadSeeker, algHint *string) error {
	return verify.VerifyStreamSegment(h, init, fragment, algHint)
}
