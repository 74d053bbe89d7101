package generate

import (
	"io"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
)

// genWholeFileHash implements spec §4.7(a): scan, resolve exclusions, hash
// the whole stream once, and store the digest directly on h.
func genWholeFileHash(h *assertion.BmffHash, r io.ReadSeeker, alg string) error {
	scan, err := bmffbox.Scan(r)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning asset")
	}

	resolved, err := exclude.Resolve(r, scan.Boxes, h.Exclusions(), scan.C2PA.AllBoxes(), h.BmffVersion() == 2)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "resolving exclusions")
	}

	digest, err := hashutil.StreamHash(r, alg, resolved)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "hashing asset")
	}

	h.SetHash(digest)
	h.SetMerkle(nil)
	log.Debugw("whole-file hash generated", "alg", alg, "boxes", len(scan.Boxes))
	return nil
}
