package generate

import (
	"os"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
)

// GenHash implements the gen_hash entry point (spec §6): it opens path,
// determines whether the asset is fragmented (presence of a top-level moof)
// and dispatches to whole-file hashing (§4.7a) or single-file fragmented
// Merkle hashing (§4.7b) accordingly. alg may be empty, in which case
// h.EffectiveAlg resolves it; if h has no explicit alg yet, the resolved
// algorithm is stamped onto h so the choice survives encode/decode.
func GenHash(h *assertion.BmffHash, path string, alg string, maxDepth int) error {
	f, err := os.Open(path)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "opening asset %s", path)
	}

	usedAlg := h.EffectiveAlg(&alg)
	if h.Alg() == nil {
		h.SetAlg(usedAlg)
	}

	scan, err := bmffbox.Scan(f)
	if err != nil {
		f.Close()
		return bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "scanning asset %s", path)
	}

	h.SetPath(path)
	fragmented := bmffbox.HasTopLevelMoof(scan.Boxes)
	f.Close()

	if fragmented {
		// genFragmentedMerkle rewrites path in place (placeholder insertion
		// and backpatch), so it manages its own file handles rather than
		// reusing the read-only handle Scan used above.
		return genFragmentedMerkle(h, path, usedAlg, maxDepth, 0, 0)
	}

	f, err = os.Open(path)
	if err != nil {
		return bmffhasherr.Wrap(bmffhasherr.KindIO, err, "reopening asset %s", path)
	}
	defer f.Close()
	return genWholeFileHash(h, f, usedAlg)
}

// RegenHash re-runs GenHash against the path recorded by a prior GenHash
// call, mirroring the original Rust BmffHash::regen_hash (spec §13
// supplement). It fails with BadParam if GenHash was never called.
func RegenHash(h *assertion.BmffHash, maxDepth int) error {
	if h.Path() == "" {
		return bmffhasherr.New(bmffhasherr.KindBadParam, "regen_hash called before gen_hash")
	}
	alg := ""
	if h.Alg() != nil {
		alg = *h.Alg()
	}
	return GenHash(h, h.Path(), alg, maxDepth)
}
