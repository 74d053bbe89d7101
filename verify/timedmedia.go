package verify

import (
	"io"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffcbor"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
	"github.com/c2pa-labs/bmffhash/merkle"
)

// verifyTimedMedia implements spec §4.8's moov/stbl path. Per-chunk Merkle
// boxes have no moof to sit beside in this shape, so they are read from
// every top-level C2PA UUID box in file order (bmffbox.C2PASummary.
// ChunkBoxes) and grouped by the LocalID each one's decoded payload
// carries, matched against a trak by its tkhd track_ID.
func verifyTimedMedia(h *assertion.BmffHash, r io.ReadSeeker, scan *bmffbox.ScanResult, global exclude.Resolved, alg string, fileLen uint64) error {
	if len(scan.C2PA.ChunkBoxes) == 0 {
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "no per-chunk merkle boxes found for timed media asset")
	}

	codec, err := bmffcbor.New()
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building cbor codec")
	}

	proofsByTrack := make(map[uint32]map[uint32]assertion.BmffMerkleMap)
	for _, cb := range scan.C2PA.ChunkBoxes {
		payload, err := bmffbox.ReadPayload(r, cb.AsBoxInfo())
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading chunk merkle box")
		}
		var proof assertion.BmffMerkleMap
		if err := codec.Unmarshal(payload, &proof); err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "decoding chunk merkle box")
		}
		track := proofsByTrack[proof.LocalID]
		if track == nil {
			track = make(map[uint32]assertion.BmffMerkleMap)
			proofsByTrack[proof.LocalID] = track
		}
		track[proof.Location] = proof
	}

	var traks []bmffbox.BoxInfoLite
	for _, b := range scan.Boxes {
		if b.Type == bmffbox.TypeTrak {
			traks = append(traks, b)
		}
	}

	for _, mm := range h.Merkle() {
		trak, err := findTrakByTrackID(r, scan.Boxes, traks, mm.LocalID)
		if err != nil {
			return err
		}

		table, err := buildSampleTable(r, scan.Boxes, trak)
		if err != nil {
			return err
		}
		if table.chunkCount() != int(mm.Count) {
			return bmffhasherr.HashMismatch("track %d has %d chunks, assertion commits to %d", mm.LocalID, table.chunkCount(), mm.Count)
		}

		proofs := proofsByTrack[mm.LocalID]
		if len(proofs) != table.chunkCount() {
			return bmffhasherr.HashMismatch("track %d has %d chunk merkle boxes, expected %d", mm.LocalID, len(proofs), table.chunkCount())
		}

		storedDepth, ok := merkle.DeriveStoredDepth(uint64(mm.Count), len(mm.Hashes))
		if !ok {
			return bmffhasherr.HashMismatch("stored merkle row length %d is not a valid layer size for %d leaves", len(mm.Hashes), mm.Count)
		}

		for c := 0; c < table.chunkCount(); c++ {
			leafHash, err := hashChunk(r, global, alg, table, c, fileLen)
			if err != nil {
				return err
			}

			proof, ok := proofs[uint32(c)]
			if !ok {
				return bmffhasherr.HashMismatch("track %d chunk %d has no merkle box", mm.LocalID, c)
			}

			ok2, err := merkle.CheckMerkleTree(alg, leafHash, uint64(c), uint64(mm.Count), storedDepth, proof.Hashes, mm.Hashes)
			if err != nil {
				return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "replaying proof for track %d chunk %d", mm.LocalID, c)
			}
			if !ok2 {
				return bmffhasherr.HashMismatch("track %d chunk %d merkle proof did not replay to the committed row", mm.LocalID, c)
			}
		}
	}

	log.Debugw("timed media merkle verified", "tracks", len(h.Merkle()))
	return nil
}

func findTrakByTrackID(r io.ReadSeeker, boxes, traks []bmffbox.BoxInfoLite, wantID uint32) (bmffbox.BoxInfoLite, error) {
	for _, trak := range traks {
		id, err := trackID(r, boxes, trak)
		if err != nil {
			return bmffbox.BoxInfoLite{}, err
		}
		if id == wantID {
			return trak, nil
		}
	}
	return bmffbox.BoxInfoLite{}, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "no trak with track_ID %d", wantID)
}

// hashChunk incrementally digests the sample bytes of chunk c, clipping the
// chunk's byte window against the asset's resolved exclusions exactly as
// the fragmented path does for a fragment window.
func hashChunk(r io.ReadSeeker, global exclude.Resolved, alg string, table sampleTable, c int, fileLen uint64) ([]byte, error) {
	start, end := table.chunkByteRange(c)
	window := exclude.Window(global, start, end, fileLen)
	digest, err := hashutil.StreamHash(r, alg, window)
	if err != nil {
		return nil, wrapHashErr(err, "hashing chunk %d", c)
	}
	return digest, nil
}
