package generate

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffcbor"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
	"github.com/c2pa-labs/bmffhash/merkle"
	"github.com/c2pa-labs/bmffhash/uuidbox"
)

type segmentState struct {
	path          string
	payloadOffset uint64
	payloadLen    int
}

// AddMerkleForMPD implements spec §4.7(c): it copies srcDir's *.mp4 init
// file and *.m4s segments to outDir, inserts a placeholder C2PA UUID box
// before each segment's first moof, computes the final leaf hashes over
// the now-fixed byte layout, and back-patches each placeholder with its
// real proof padded to the reserved depth. It returns the path of the
// copied init segment, for a subsequent UpdateMPDHash call. initHash is
// left as an alg-sized zero placeholder until UpdateMPDHash runs.
func AddMerkleForMPD(h *assertion.BmffHash, alg, srcDir, outDir string, localID uint32, uniqueID *uint32, maxDepth int) (string, error) {
	uid := uint32(0)
	if uniqueID != nil {
		uid = *uniqueID
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return "", bmffhasherr.Wrap(bmffhasherr.KindBadParam, err, "reading source directory %s", srcDir)
	}

	var initName string
	var segmentNames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(e.Name(), ".mp4"):
			if initName != "" {
				return "", bmffhasherr.New(bmffhasherr.KindBadParam, "multiple .mp4 init candidates in %s", srcDir)
			}
			initName = e.Name()
		case strings.HasSuffix(e.Name(), ".m4s"):
			segmentNames = append(segmentNames, e.Name())
		}
	}
	if initName == "" {
		return "", bmffhasherr.New(bmffhasherr.KindBadParam, "no .mp4 init segment found in %s", srcDir)
	}
	if len(segmentNames) == 0 {
		return "", bmffhasherr.New(bmffhasherr.KindBadParam, "no .m4s segments found in %s", srcDir)
	}
	sort.Strings(segmentNames)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", bmffhasherr.Wrap(bmffhasherr.KindIO, err, "creating output directory %s", outDir)
	}

	initOutPath := filepath.Join(outDir, initName)
	if err := copyFile(filepath.Join(srcDir, initName), initOutPath); err != nil {
		return "", err
	}

	n := uint32(len(segmentNames))
	reservedDepth := merkle.StoredDepthForCount(uint64(n), maxDepth)

	codec, err := bmffcbor.New()
	if err != nil {
		return "", bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building cbor codec")
	}

	segments := make([]segmentState, n)
	for i, name := range segmentNames {
		outPath := filepath.Join(outDir, name)
		if err := copyFile(filepath.Join(srcDir, name), outPath); err != nil {
			return "", err
		}

		state, err := insertPlaceholder(outPath, codec, uid, localID, uint32(i), alg, reservedDepth)
		if err != nil {
			return "", err
		}
		state.path = outPath
		segments[i] = state
	}

	leaves := make([][]byte, n)
	for i, seg := range segments {
		leafHash, err := hashSegment(seg.path, h.Exclusions(), h.BmffVersion() == 2, alg)
		if err != nil {
			return "", err
		}
		leaves[i] = leafHash
	}

	tree, err := merkle.BuildTree(alg, leaves)
	if err != nil {
		return "", bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "building dash merkle tree")
	}

	storedDepth := tree.StoredDepth(maxDepth)
	row := tree.Row(storedDepth)

	digestLen, err := hashDigestLen(alg)
	if err != nil {
		return "", err
	}

	for i, seg := range segments {
		proof, err := tree.GetProofByIndex(uint64(i), maxDepth)
		if err != nil {
			return "", bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "computing proof for segment %d", i)
		}
		if len(proof) > reservedDepth {
			return "", bmffhasherr.New(bmffhasherr.KindBadParam, "segment %d proof exceeds reserved depth %d", i, reservedDepth)
		}

		padded := make([][]byte, reservedDepth)
		copy(padded, proof)
		for j := len(proof); j < reservedDepth; j++ {
			padded[j] = make([]byte, digestLen)
		}

		mm := assertion.BmffMerkleMap{
			UniqueID: uid,
			LocalID:  localID,
			Location: uint32(i),
			Hashes:   padded,
		}

		f, err := os.OpenFile(seg.path, os.O_RDWR, 0)
		if err != nil {
			return "", bmffhasherr.Wrap(bmffhasherr.KindIO, err, "reopening segment %s", seg.path)
		}
		err = uuidbox.BackPatch(f, codec, seg.payloadOffset, seg.payloadLen, mm)
		f.Close()
		if err != nil {
			return "", bmffhasherr.Wrap(bmffhasherr.KindIO, err, "backpatching segment %s", seg.path)
		}
	}

	mm := assertion.MerkleMap{
		UniqueID: uid,
		LocalID:  localID,
		Count:    n,
		InitHash: make([]byte, digestLen),
		Hashes:   row,
	}
	h.SetMerkle([]assertion.MerkleMap{mm})
	h.SetHash(nil)
	if h.Alg() == nil {
		h.SetAlg(alg)
	}

	log.Debugw("dash merkle prepared", "segments", n, "reservedDepth", reservedDepth, "storedDepth", storedDepth)
	return initOutPath, nil
}

// UpdateMPDHash implements update_mpd_hash (spec §4.7c step 7): after the
// manifest carrying this assertion has been embedded into initPath by an
// external collaborator, this recomputes the init segment's digest and
// fills it into the assertion's single MerkleMap, replacing the zero
// placeholder AddMerkleForMPD left there.
func UpdateMPDHash(h *assertion.BmffHash, initPath string, alg string) error {
	merkleMaps := h.Merkle()
	if len(merkleMaps) != 1 {
		return bmffhasherr.New(bmffhasherr.KindBadParam, "update_mpd_hash requires a prior add_merkle_for_mpd call")
	}

	f, err := os.Open(initPath)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "opening init segment %s", initPath)
	}
	defer f.Close()

	scan, err := bmffbox.Scan(f)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning init segment")
	}

	resolved, err := exclude.Resolve(f, scan.Boxes, h.Exclusions(), scan.C2PA.AllBoxes(), h.BmffVersion() == 2)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving init segment exclusions")
	}

	digest, err := hashutil.StreamHash(f, alg, resolved)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "hashing init segment")
	}

	mm := merkleMaps[0]
	mm.InitHash = digest
	h.SetMerkle([]assertion.MerkleMap{mm})
	return nil
}

func insertPlaceholder(path string, codec bmffcbor.Codec, uniqueID, localID, location uint32, alg string, reservedDepth int) (segmentState, error) {
	f, err := os.Open(path)
	if err != nil {
		return segmentState{}, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "opening segment %s", path)
	}
	scan, err := bmffbox.Scan(f)
	f.Close()
	if err != nil {
		return segmentState{}, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning segment %s", path)
	}

	var insertAt uint64
	found := false
	for _, b := range scan.Boxes {
		if b.Type == bmffbox.TypeMoof && bmffbox.IsTopLevel(b.Path) {
			insertAt = b.Offset
			found = true
			break
		}
	}
	if !found {
		return segmentState{}, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "segment %s has no moof box", path)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return segmentState{}, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "reading segment %s", path)
	}

	_, boxBytes, err := uuidbox.WritePlaceholder(io.Discard, codec, uniqueID, localID, location, alg, reservedDepth)
	if err != nil {
		return segmentState{}, bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "building placeholder box")
	}

	spliced := make([]byte, 0, len(original)+len(boxBytes))
	spliced = append(spliced, original[:insertAt]...)
	spliced = append(spliced, boxBytes...)
	spliced = append(spliced, original[insertAt:]...)

	if err := os.WriteFile(path, spliced, 0o644); err != nil {
		return segmentState{}, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "writing spliced segment %s", path)
	}

	// uuid boxes this small always take the compact 4-byte size form, so the
	// header is a fixed 24 bytes (size+type+usertype); HeaderLen still
	// confirms it rather than assuming.
	headerLen := uuidbox.HeaderLen(len(boxBytes) - 24)
	payloadOffset := insertAt + headerLen
	payloadLen := len(boxBytes) - int(headerLen)

	return segmentState{payloadOffset: payloadOffset, payloadLen: payloadLen}, nil
}

func hashSegment(path string, rules []assertion.ExclusionsMap, v2 bool, alg string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "opening segment %s", path)
	}
	defer f.Close()

	scan, err := bmffbox.Scan(f)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning segment %s", path)
	}

	resolved, err := exclude.Resolve(f, scan.Boxes, rules, scan.C2PA.AllBoxes(), v2)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving segment exclusions")
	}

	digest, err := hashutil.StreamHash(f, alg, resolved)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindIO, err, "hashing segment %s", path)
	}
	return digest, nil
}

func hashDigestLen(alg string) (int, error) {
	h, err := hashutil.NewHash(alg)
	if err != nil {
		return 0, bmffhasherr.Wrap(bmffhasherr.KindUnsupportedType, err, "unsupported algorithm %s", alg)
	}
	return h.Size(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "opening %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "creating %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "copying %s to %s", src, dst)
	}
	return nil
}
