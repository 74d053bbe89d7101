package uuidbox

import (
	"io"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffcbor"
	"github.com/c2pa-labs/bmffhash/hashutil"
)

// PlaceholderMerkleMap builds a BmffMerkleMap for fragment leaf index
// location, with Hashes reserved at exactly maxDepth zero-valued entries of
// alg's digest length. Encoding this and the eventual real proof through
// the same codec always yields byte-identical lengths, since CBOR's byte
// string header depends only on length, never on content.
func PlaceholderMerkleMap(uniqueID, localID, location uint32, alg string, maxDepth int) (assertion.BmffMerkleMap, error) {
	h, err := hashutil.NewHash(alg)
	if err != nil {
		return assertion.BmffMerkleMap{}, err
	}

	hashes := make([][]byte, maxDepth)
	for i := range hashes {
		hashes[i] = make([]byte, h.Size())
	}

	return assertion.BmffMerkleMap{
		UniqueID: uniqueID,
		LocalID:  localID,
		Location: location,
		Hashes:   hashes,
	}, nil
}

// BuildBox encodes m through codec and frames it as a C2PA uuid box,
// returning the complete box bytes.
func BuildBox(codec bmffcbor.Codec, m assertion.BmffMerkleMap) ([]byte, error) {
	payload, err := codec.Marshal(m)
	if err != nil {
		return nil, err
	}
	return Build(bmffbox.C2PAUserType, payload), nil
}

// WritePlaceholder encodes the placeholder map built from the given
// parameters, writes its framed box to w, and returns both the bytes
// written and the map used to build them, so the caller can compute the
// box's file offset and remember the reserved proof depth for BackPatch.
func WritePlaceholder(w io.Writer, codec bmffcbor.Codec, uniqueID, localID, location uint32, alg string, maxDepth int) (assertion.BmffMerkleMap, []byte, error) {
	m, err := PlaceholderMerkleMap(uniqueID, localID, location, alg, maxDepth)
	if err != nil {
		return assertion.BmffMerkleMap{}, nil, err
	}
	boxBytes, err := BuildBox(codec, m)
	if err != nil {
		return assertion.BmffMerkleMap{}, nil, err
	}
	if _, err := w.Write(boxBytes); err != nil {
		return assertion.BmffMerkleMap{}, nil, err
	}
	return m, boxBytes, nil
}

// BackPatch re-encodes m through codec and overwrites the payload bytes at
// [payloadOffset, payloadOffset+len(placeholderPayload)) in w with the
// result. It fails with ErrSizeMismatch rather than write a value whose
// encoded length differs from the placeholder's, which would corrupt every
// box after it.
func BackPatch(w io.WriterAt, codec bmffcbor.Codec, payloadOffset uint64, placeholderPayloadLen int, m assertion.BmffMerkleMap) error {
	payload, err := codec.Marshal(m)
	if err != nil {
		return err
	}
	if len(payload) != placeholderPayloadLen {
		return ErrSizeMismatch
	}

	_, err = w.WriteAt(payload, int64(payloadOffset))
	return err
}
