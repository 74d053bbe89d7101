package verify

import (
	"bytes"

	"github.com/c2pa-labs/bmffhash/assertion"
)

// VerifyInMemoryHash adapts VerifyStreamHash to an already-loaded byte
// slice (spec §13's in-memory convenience entry point). It is kept in this
// package rather than on assertion.BmffHash itself: assertion only owns the
// wire data model and must not import the scanning/hashing packages, so a
// method living there would either import verify (a cycle, since verify
// already imports assertion) or duplicate this package's dispatch logic.
func VerifyInMemoryHash(h *assertion.BmffHash, data []byte, algHint *string) error {
	return VerifyStreamHash(h, bytes.NewReader(data), algHint)
}
