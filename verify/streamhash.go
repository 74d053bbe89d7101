package verify

import (
	"bytes"
	"io"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
)

// VerifyStreamHash replays h's committed digest or Merkle proof against r's
// current bytes. algHint is used only when h carries no explicit alg of its
// own (spec §4.8). A remote (URL-addressed) hash is out of scope and always
// rejected with KindBadParam.
func VerifyStreamHash(h *assertion.BmffHash, r io.ReadSeeker, algHint *string) error {
	if h.IsRemoteHash() {
		return bmffhasherr.New(bmffhasherr.KindBadParam, "remote hash assertions cannot be verified locally")
	}

	alg := h.EffectiveAlg(algHint)

	scan, err := bmffbox.Scan(r)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning asset")
	}

	fileLen, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "seeking asset end")
	}

	global, err := exclude.Resolve(r, scan.Boxes, h.Exclusions(), scan.C2PA.AllBoxes(), h.BmffVersion() == 2)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving exclusions")
	}

	if h.Hash() != nil {
		digest, err := hashutil.StreamHash(r, alg, global)
		if err != nil {
			return wrapHashErr(err, "hashing asset")
		}
		if !bytes.Equal(digest, h.Hash()) {
			return bmffhasherr.HashMismatch("asset hash mismatch")
		}
		log.Debugw("whole-file hash verified", "alg", alg)
		return nil
	}

	if len(h.Merkle()) == 0 {
		return bmffhasherr.New(bmffhasherr.KindBadParam, "assertion carries neither hash nor merkle data")
	}

	for _, b := range scan.Boxes {
		if b.Type == bmffbox.TypeIloc {
			return bmffhasherr.New(bmffhasherr.KindNotImplemented, "iloc-addressed merkle hashing is not implemented")
		}
	}

	if bmffbox.HasTopLevelMoof(scan.Boxes) {
		return verifyFragmentedSingleFile(h, r, scan, global, alg, uint64(fileLen))
	}

	if hasBox(scan.Boxes, bmffbox.TypeMoov) {
		return verifyTimedMedia(h, r, scan, global, alg, uint64(fileLen))
	}

	return bmffhasherr.New(bmffhasherr.KindInvalidAsset, "unable to determine a merkle verification shape for this asset")
}

func hasBox(boxes []bmffbox.BoxInfoLite, t bmffbox.BoxType) bool {
	for _, b := range boxes {
		if b.Type == t {
			return true
		}
	}
	return false
}
