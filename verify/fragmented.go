package verify

import (
	"bytes"
	"io"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffcbor"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
	"github.com/c2pa-labs/bmffhash/merkle"
)

// verifyFragmentedSingleFile implements spec §4.8's fragmented single-file
// path: cluster moof-chunks exactly as the generator did, hash each
// chunk's window, and replay its embedded proof up to the committed row.
func verifyFragmentedSingleFile(h *assertion.BmffHash, r io.ReadSeeker, scan *bmffbox.ScanResult, global exclude.Resolved, alg string, fileLen uint64) error {
	merkleMaps := h.Merkle()
	if len(merkleMaps) != 1 {
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "fragmented single-file verification expects exactly one merkle map, got %d", len(merkleMaps))
	}
	mm := merkleMaps[0]

	chunks := bmffbox.ClusterFragmentChunks(scan.Boxes, fileLen)
	if len(chunks) == 0 {
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "no fragments found")
	}
	if uint32(len(chunks)) != mm.Count || len(scan.C2PA.Fragments) != len(chunks) {
		return bmffhasherr.HashMismatch("fragment count mismatch: asset has %d, assertion commits to %d", len(chunks), mm.Count)
	}
	if len(mm.InitHash) == 0 {
		return bmffhasherr.HashMismatch("BMFF inithash missing for fragmented asset")
	}

	initWindow := exclude.Window(global, 0, chunks[0].Start, fileLen)
	initDigest, err := hashutil.StreamHash(r, alg, initWindow)
	if err != nil {
		return wrapHashErr(err, "hashing init segment window")
	}
	if !bytes.Equal(initDigest, mm.InitHash) {
		return bmffhasherr.HashMismatch("BMFF inithash mismatch")
	}

	codec, err := bmffcbor.New()
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building cbor codec")
	}

	storedDepth, ok := merkle.DeriveStoredDepth(uint64(mm.Count), len(mm.Hashes))
	if !ok {
		return bmffhasherr.HashMismatch("stored merkle row length %d is not a valid layer size for %d leaves", len(mm.Hashes), mm.Count)
	}

	for i, chunk := range chunks {
		payload, err := bmffbox.ReadPayload(r, scan.C2PA.Fragments[i].UUIDBox.AsBoxInfo())
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading fragment %d merkle box", i)
		}
		var proofMap assertion.BmffMerkleMap
		if err := codec.Unmarshal(payload, &proofMap); err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "decoding fragment %d merkle box", i)
		}

		window := exclude.Window(global, chunk.Start, chunk.End, fileLen)
		leafHash, err := hashutil.StreamHash(r, alg, window)
		if err != nil {
			return wrapHashErr(err, "hashing fragment %d", i)
		}

		ok, err := merkle.CheckMerkleTree(alg, leafHash, uint64(proofMap.Location), uint64(mm.Count), storedDepth, proofMap.Hashes, mm.Hashes)
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "replaying proof for fragment %d", i)
		}
		if !ok {
			return bmffhasherr.HashMismatch("fragment %d merkle proof did not replay to the committed row", i)
		}
	}

	log.Debugw("fragmented single-file merkle verified", "fragments", len(chunks))
	return nil
}
