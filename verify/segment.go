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

// VerifyStreamSegment implements spec §4.7(c)'s DASH verification path: the
// init segment's digest is checked against MerkleMap.InitHash, and, when
// fragment is non-nil, that single media segment's own embedded proof is
// replayed against the committed row. Passing a nil fragment checks only
// the init segment, e.g. right after UpdateMPDHash.
func VerifyStreamSegment(h *assertion.BmffHash, init io.ReadSeeker, fragment io.ReadSeeker, algHint *string) error {
	if h.IsRemoteHash() {
		return bmffhasherr.New(bmffhasherr.KindBadParam, "remote hash assertions cannot be verified locally")
	}

	merkleMaps := h.Merkle()
	if len(merkleMaps) != 1 {
		return bmffhasherr.New(bmffhasherr.KindBadParam, "verify_stream_segment requires exactly one merkle map, got %d", len(merkleMaps))
	}
	mm := merkleMaps[0]
	alg := h.EffectiveAlg(algHint)

	initScan, err := bmffbox.Scan(init)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning init segment")
	}
	initGlobal, err := exclude.Resolve(init, initScan.Boxes, h.Exclusions(), initScan.C2PA.AllBoxes(), h.BmffVersion() == 2)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving init segment exclusions")
	}
	initDigest, err := hashutil.StreamHash(init, alg, initGlobal)
	if err != nil {
		return wrapHashErr(err, "hashing init segment")
	}
	if len(mm.InitHash) == 0 || !bytes.Equal(initDigest, mm.InitHash) {
		return bmffhasherr.HashMismatch("BMFF inithash mismatch")
	}

	if fragment == nil {
		return nil
	}

	fragScan, err := bmffbox.Scan(fragment)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning media segment")
	}
	if len(fragScan.C2PA.Fragments) != 1 {
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "media segment must contain exactly one fragment merkle box, found %d", len(fragScan.C2PA.Fragments))
	}

	fragGlobal, err := exclude.Resolve(fragment, fragScan.Boxes, h.Exclusions(), fragScan.C2PA.AllBoxes(), h.BmffVersion() == 2)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving media segment exclusions")
	}
	leafHash, err := hashutil.StreamHash(fragment, alg, fragGlobal)
	if err != nil {
		return wrapHashErr(err, "hashing media segment")
	}

	codec, err := bmffcbor.New()
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building cbor codec")
	}
	payload, err := bmffbox.ReadPayload(fragment, fragScan.C2PA.Fragments[0].UUIDBox.AsBoxInfo())
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading media segment merkle box")
	}
	var proof assertion.BmffMerkleMap
	if err := codec.Unmarshal(payload, &proof); err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "decoding media segment merkle box")
	}

	storedDepth, ok := merkle.DeriveStoredDepth(uint64(mm.Count), len(mm.Hashes))
	if !ok {
		return bmffhasherr.HashMismatch("stored merkle row length %d is not a valid layer size for %d leaves", len(mm.Hashes), mm.Count)
	}

	ok, err = merkle.CheckMerkleTree(alg, leafHash, uint64(proof.Location), uint64(mm.Count), storedDepth, proof.Hashes, mm.Hashes)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "replaying media segment proof")
	}
	if !ok {
		return bmffhasherr.HashMismatch("Fragment not valid")
	}

	log.Debugw("dash segment verified", "location", proof.Location)
	return nil
}
