package generate

import (
	"io"
	"os"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffcbor"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
	"github.com/c2pa-labs/bmffhash/merkle"
	"github.com/c2pa-labs/bmffhash/uuidbox"
)

type fragmentPlaceholder struct {
	payloadOffset uint64
	payloadLen    int
}

// genFragmentedMerkle implements spec §4.7(b): single-file fragmented
// Merkle hashing. On first use it inserts a zero-filled placeholder C2PA
// Merkle UUID box before every top-level moof; a RegenHash call against an
// asset that already carries one such box per fragment (from a prior
// GenHash) reuses those boxes in place instead of inserting more. It then
// hashes the resulting fragment windows, builds the tree, and backpatches
// each placeholder with its real proof — the same placeholder/backpatch
// dance AddMerkleForMPD runs per DASH segment, applied here to fragments
// sharing one file. uniqueID/localID are stamped onto the resulting
// MerkleMap; localID is conventionally 0 for this mode (spec §9 Open
// Questions).
func genFragmentedMerkle(h *assertion.BmffHash, path string, alg string, maxDepth int, uniqueID, localID uint32) error {
	codec, err := bmffcbor.New()
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building cbor codec")
	}

	f, err := os.Open(path)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "opening asset %s", path)
	}
	scan, err := bmffbox.Scan(f)
	f.Close()
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning asset %s", path)
	}

	var moofOffsets []uint64
	for _, b := range scan.Boxes {
		if b.Type == bmffbox.TypeMoof && bmffbox.IsTopLevel(b.Path) {
			moofOffsets = append(moofOffsets, b.Offset)
		}
	}
	n := uint32(len(moofOffsets))
	if n == 0 {
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "asset %s has no top-level moof boxes", path)
	}
	reservedDepth := merkle.StoredDepthForCount(uint64(n), maxDepth)

	var placeholders []fragmentPlaceholder
	switch len(scan.C2PA.Fragments) {
	case 0:
		placeholders, err = insertFragmentPlaceholders(path, codec, moofOffsets, uniqueID, localID, alg, reservedDepth)
		if err != nil {
			return err
		}
	case int(n):
		placeholders = make([]fragmentPlaceholder, n)
		for i, frag := range scan.C2PA.Fragments {
			placeholders[i] = fragmentPlaceholder{
				payloadOffset: frag.UUIDBox.PayloadOffset(),
				payloadLen:    int(frag.UUIDBox.PayloadSize()),
			}
		}
	default:
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "asset %s has %d of %d fragments carrying a merkle box; partial embedding is not supported", path, len(scan.C2PA.Fragments), n)
	}

	f, err = os.Open(path)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "reopening asset %s", path)
	}
	defer f.Close()

	scan, err = bmffbox.Scan(f)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "rescanning asset %s", path)
	}
	fileLen, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "seeking asset %s", path)
	}

	global, err := exclude.Resolve(f, scan.Boxes, h.Exclusions(), scan.C2PA.AllBoxes(), h.BmffVersion() == 2)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving exclusions for %s", path)
	}

	chunks := bmffbox.ClusterFragmentChunks(scan.Boxes, uint64(fileLen))
	if uint32(len(chunks)) != n {
		return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "fragment count changed after placeholder insertion")
	}

	leaves := make([][]byte, n)
	for i, c := range chunks {
		w := exclude.Window(global, c.Start, c.End, uint64(fileLen))
		leafHash, err := hashutil.StreamHash(f, alg, w)
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "hashing fragment %d", i)
		}
		leaves[i] = leafHash
	}

	initWindow := exclude.Window(global, 0, chunks[0].Start, uint64(fileLen))
	initHash, err := hashutil.StreamHash(f, alg, initWindow)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "hashing init region of %s", path)
	}

	tree, err := merkle.BuildTree(alg, leaves)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "building merkle tree for %s", path)
	}
	storedDepth := tree.StoredDepth(maxDepth)
	row := tree.Row(storedDepth)

	digestLen, err := hashDigestLen(alg)
	if err != nil {
		return err
	}

	for i := range chunks {
		proof, err := tree.GetProofByIndex(uint64(i), maxDepth)
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "computing proof for fragment %d", i)
		}
		if len(proof) > reservedDepth {
			return bmffhasherr.New(bmffhasherr.KindBadParam, "fragment %d proof exceeds reserved depth %d", i, reservedDepth)
		}

		padded := make([][]byte, reservedDepth)
		copy(padded, proof)
		for j := len(proof); j < reservedDepth; j++ {
			padded[j] = make([]byte, digestLen)
		}

		mm := assertion.BmffMerkleMap{
			UniqueID: uniqueID,
			LocalID:  localID,
			Location: uint32(i),
			Hashes:   padded,
		}

		wf, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "reopening %s for backpatch", path)
		}
		err = uuidbox.BackPatch(wf, codec, placeholders[i].payloadOffset, placeholders[i].payloadLen, mm)
		wf.Close()
		if err != nil {
			return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "backpatching fragment %d", i)
		}
	}

	h.SetMerkle([]assertion.MerkleMap{{
		UniqueID: uniqueID,
		LocalID:  localID,
		Count:    n,
		InitHash: initHash,
		Hashes:   row,
	}})
	h.SetHash(nil)

	log.Debugw("fragmented merkle embedded", "alg", alg, "fragments", n, "reservedDepth", reservedDepth, "storedDepth", storedDepth)
	return nil
}

// insertFragmentPlaceholders splices a zero-filled placeholder Merkle UUID
// box into path immediately before each offset in moofOffsets, in one
// rewrite pass, and returns each placeholder's payload location in the
// rewritten file.
func insertFragmentPlaceholders(path string, codec bmffcbor.Codec, moofOffsets []uint64, uniqueID, localID uint32, alg string, reservedDepth int) ([]fragmentPlaceholder, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "reading asset %s", path)
	}

	placeholders := make([]fragmentPlaceholder, len(moofOffsets))
	spliced := make([]byte, 0, len(original))
	cursor := uint64(0)

	for i, off := range moofOffsets {
		spliced = append(spliced, original[cursor:off]...)

		_, boxBytes, err := uuidbox.WritePlaceholder(io.Discard, codec, uniqueID, localID, uint32(i), alg, reservedDepth)
		if err != nil {
			return nil, bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building placeholder box for fragment %d", i)
		}

		insertedAt := uint64(len(spliced))
		spliced = append(spliced, boxBytes...)

		headerLen := uuidbox.HeaderLen(len(boxBytes) - 24)
		placeholders[i] = fragmentPlaceholder{
			payloadOffset: insertedAt + headerLen,
			payloadLen:    len(boxBytes) - int(headerLen),
		}

		cursor = off
	}
	spliced = append(spliced, original[cursor:]...)

	if err := os.WriteFile(path, spliced, 0o644); err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "writing spliced asset %s", path)
	}
	return placeholders, nil
}
