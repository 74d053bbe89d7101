// Package assertion owns the BmffHash assertion's serialized data model:
// ExclusionsMap, MerkleMap, and the BmffHash struct itself, their
// deterministic CBOR wire format, and version dispatch between v1 and v2
// exclusion-offset semantics. It does not itself scan boxes, hash bytes, or
// build Merkle trees — those are the bmffbox, exclude, hashutil, and merkle
// packages respectively, which the generate and verify packages compose
// around this data model.
package assertion

// DataMap is a single (offset, value) predicate within an ExclusionsMap's
// optional "data" filter: a matching box's payload must equal value at the
// given offset.
type DataMap struct {
	Offset uint32 `cbor:"offset"`
	Value  []byte `cbor:"value"`
}

// SubsetMap carves a sub-range out of a matched box's payload. Length == 0
// means "to the end of the box".
type SubsetMap struct {
	Offset uint32 `cbor:"offset"`
	Length uint32 `cbor:"length"`
}

// ExclusionsMap is one user-supplied rule resolved against a box index by
// the exclude package. See spec §3/§4.2 for the full resolution algorithm.
type ExclusionsMap struct {
	XPath   string      `cbor:"xpath"`
	Length  *uint32     `cbor:"length,omitempty"`
	Data    []DataMap   `cbor:"data,omitempty"`
	Subset  []SubsetMap `cbor:"subset,omitempty"`
	Version *uint8      `cbor:"version,omitempty"`
	Flags   []byte      `cbor:"flags,omitempty"`
	Exact   *bool       `cbor:"exact,omitempty"`
}

// NewExclusionsMap builds a bare rule matching xpath, with every optional
// predicate unset.
func NewExclusionsMap(xpath string) ExclusionsMap {
	return ExclusionsMap{XPath: xpath}
}

// MerkleMap is the generator's committed Merkle summary for one track
// (timed media) or for the whole fragmented/DASH asset (local_id == 0).
// Hashes is the stored row of the tree at the depth the generator chose to
// persist (the "root layer"), per spec §4.4's tie-break rule.
type MerkleMap struct {
	UniqueID uint32   `cbor:"uniqueId"`
	LocalID  uint32   `cbor:"localId"`
	Count    uint32   `cbor:"count"`
	Alg      *string  `cbor:"alg,omitempty"`
	InitHash []byte   `cbor:"initHash,omitempty"`
	Hashes   [][]byte `cbor:"hashes"`
}

// BmffMerkleMap is the payload of a single C2PA UUID box written adjacent
// to one fragment's moof. Location is the zero-based leaf index of that
// fragment; Hashes is its sibling proof up to the stored MerkleMap row.
type BmffMerkleMap struct {
	UniqueID uint32   `cbor:"uniqueId"`
	LocalID  uint32   `cbor:"localId"`
	Location uint32   `cbor:"location"`
	Hashes   [][]byte `cbor:"hashes,omitempty"`
}
