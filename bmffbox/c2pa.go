package bmffbox

import "github.com/google/uuid"

// C2PAUserType is the 16-byte usertype C2PA assigns to `uuid` boxes that
// carry either the top-level manifest placeholder or a per-fragment
// BmffMerkleMap. The two uses are distinguished by position (top-level vs.
// immediately preceding a moof), not by a different usertype value.
var C2PAUserType = uuid.MustParse("d8fec3d6-1162-4945-8479-2ca6ae9b675e")

// C2PABox records the location of a single C2PA UUID box so rewriters can
// back-patch its payload in place without re-scanning.
type C2PABox struct {
	Offset     uint64
	Size       uint64
	HeaderSize uint64
}

// PayloadOffset returns the absolute offset of the first CBOR payload byte.
func (b C2PABox) PayloadOffset() uint64 { return b.Offset + b.HeaderSize }

// PayloadSize returns the number of CBOR payload bytes.
func (b C2PABox) PayloadSize() uint64 { return b.Size - b.HeaderSize }

// AsBoxInfo adapts a C2PABox to the BoxInfoLite shape ReadPayload expects.
// Path, Type, IsUUID, and UUID are not reconstructed since ReadPayload only
// needs Offset/Size/HeaderSize.
func (b C2PABox) AsBoxInfo() BoxInfoLite {
	return BoxInfoLite{Offset: b.Offset, Size: b.Size, HeaderSize: b.HeaderSize}
}

// C2PASummary classifies the C2PA UUID boxes found by Scan into the single
// top-level manifest box (if any) and the per-fragment Merkle boxes, each
// paired with the moof box it immediately precedes.
type C2PASummary struct {
	// Manifest is the top-level manifest UUID box, if present.
	Manifest *C2PABox
	// Fragments holds one entry per moof-adjacent Merkle UUID box, in
	// file order.
	Fragments []FragmentC2PABox
	// ChunkBoxes holds, for an asset with no moof box at all (the
	// moov/stbl "timed media" shape), every top-level C2PA UUID box in
	// file order. There is nothing to pair these against positionally, so
	// unlike Fragments they are not associated with a sibling box; the
	// verifier matches them to tracks and chunks by the LocalID and
	// Location in each box's decoded payload instead.
	ChunkBoxes []C2PABox
}

// FragmentC2PABox pairs a per-fragment C2PA Merkle UUID box with the moof
// box it precedes.
type FragmentC2PABox struct {
	UUIDBox  C2PABox
	MoofInfo BoxInfoLite
}

// AllBoxes returns every C2PA UUID box in the summary, manifest first, in
// a form convenient for exclusion-resolution (offset, size) pairs.
func (s C2PASummary) AllBoxes() []C2PABox {
	boxes := make([]C2PABox, 0, len(s.Fragments)+len(s.ChunkBoxes)+1)
	if s.Manifest != nil {
		boxes = append(boxes, *s.Manifest)
	}
	for _, f := range s.Fragments {
		boxes = append(boxes, f.UUIDBox)
	}
	boxes = append(boxes, s.ChunkBoxes...)
	return boxes
}
