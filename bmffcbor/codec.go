// Package bmffcbor wraps fxamacker/cbor/v2 with the encode/decode option
// sets the BMFF hash assertion's wire format requires: deterministic,
// canonical-order map keys on encode (so two encodings of an equal value are
// byte-identical, per the assertion's round-trip invariant), and strict,
// non-permissive decoding that rejects duplicate map keys rather than
// silently taking the last one.
//
// This mirrors the teacher's own small codec wrapper
// (massifs/cborcodec.go), which centralizes one set of cbor.EncMode/DecMode
// values behind a single constructor rather than letting every call site
// configure cbor.Marshal itself.
package bmffcbor

import (
	"github.com/fxamacker/cbor/v2"
)

// Codec bundles one matched pair of deterministic encode/decode modes.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// New builds a Codec using CBOR's core deterministic encoding profile
// (canonical map key ordering, shortest-form integers) and a decode mode
// that rejects duplicate map keys.
func New() (Codec, error) {
	encOpts := cbor.CanonicalEncOptions()
	enc, err := encOpts.EncMode()
	if err != nil {
		return Codec{}, err
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}
	dec, err := decOpts.DecMode()
	if err != nil {
		return Codec{}, err
	}

	return Codec{enc: enc, dec: dec}, nil
}

// Marshal encodes v using the canonical, deterministic profile.
func (c Codec) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

// Unmarshal decodes data into v, rejecting duplicate map keys.
func (c Codec) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}
