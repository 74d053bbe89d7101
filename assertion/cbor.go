package assertion

import (
	"github.com/c2pa-labs/bmffhash/bmffcbor"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
)

// wireBmffHash is the exact CBOR map shape from spec §6: required
// "exclusions", optional everything else, omitted (not present as null)
// when unset.
type wireBmffHash struct {
	Exclusions []ExclusionsMap `cbor:"exclusions"`
	Alg        *string         `cbor:"alg,omitempty"`
	Hash       []byte          `cbor:"hash,omitempty"`
	Merkle     []MerkleMap     `cbor:"merkle,omitempty"`
	Name       *string         `cbor:"name,omitempty"`
	URL        *string         `cbor:"url,omitempty"`
}

func (h *BmffHash) toWire() wireBmffHash {
	excl := h.exclusions
	if excl == nil {
		excl = []ExclusionsMap{}
	}
	return wireBmffHash{
		Exclusions: excl,
		Alg:        h.alg,
		Hash:       h.hash,
		Merkle:     h.merkle,
		Name:       h.name,
		URL:        h.url,
	}
}

func fromWire(w wireBmffHash) *BmffHash {
	return &BmffHash{
		exclusions:  w.Exclusions,
		alg:         w.Alg,
		hash:        w.Hash,
		merkle:      w.Merkle,
		name:        w.Name,
		url:         w.URL,
		bmffVersion: 1,
	}
}

// Encode serializes h to its deterministic CBOR wire form using codec.
func (h *BmffHash) Encode(codec bmffcbor.Codec) ([]byte, error) {
	data, err := codec.Marshal(h.toWire())
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "encoding BmffHash")
	}
	return data, nil
}

// Decode parses a BmffHash from CBOR bytes, tagging it with the given
// container-supplied version (1 or 2). bmffVersion is not itself part of
// the CBOR payload; see spec §3.
func Decode(codec bmffcbor.Codec, data []byte, bmffVersion int) (*BmffHash, error) {
	var w wireBmffHash
	if err := codec.Unmarshal(data, &w); err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindAssertionEncoding, err, "decoding BmffHash")
	}
	h := fromWire(w)
	h.bmffVersion = bmffVersion
	return h, nil
}
