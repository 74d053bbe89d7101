package bmffbox

import "github.com/google/uuid"

// BoxType is a 4-byte ISOBMFF box type identifier, e.g. "moov", "trak".
type BoxType [4]byte

func (t BoxType) String() string { return string(t[:]) }

// Known box types, restricted to the ones this package needs to recognize
// either as containers it must recurse into, or as C2PA-significant leaves.
var (
	TypeUUID = BoxType{'u', 'u', 'i', 'd'}
	TypeMoof = BoxType{'m', 'o', 'o', 'f'}
	TypeMdat = BoxType{'m', 'd', 'a', 't'}
	TypeMoov = BoxType{'m', 'o', 'o', 'v'}
	TypeTraf = BoxType{'t', 'r', 'a', 'f'}
	TypeFtyp = BoxType{'f', 't', 'y', 'p'}
	TypeStyp = BoxType{'s', 't', 'y', 'p'}
	TypeTrak = BoxType{'t', 'r', 'a', 'k'}
	TypeTkhd = BoxType{'t', 'k', 'h', 'd'}
	TypeStbl = BoxType{'s', 't', 'b', 'l'}
	TypeStsc = BoxType{'s', 't', 's', 'c'}
	TypeStco = BoxType{'s', 't', 'c', 'o'}
	TypeCo64 = BoxType{'c', 'o', '6', '4'}
	TypeStsz = BoxType{'s', 't', 's', 'z'}
	TypeIloc = BoxType{'i', 'l', 'o', 'c'}
)

// containerTypes is the set of ISOBMFF box types whose payload is itself a
// sequence of boxes. Anything not in this set is treated as an opaque leaf,
// per the spec's §4.1 known-container list.
var containerTypes = map[BoxType]bool{
	{'m', 'o', 'o', 'v'}: true,
	{'t', 'r', 'a', 'k'}: true,
	{'m', 'd', 'i', 'a'}: true,
	{'m', 'i', 'n', 'f'}: true,
	{'s', 't', 'b', 'l'}: true,
	{'e', 'd', 't', 's'}: true,
	{'m', 'v', 'e', 'x'}: true,
	{'m', 'o', 'o', 'f'}: true,
	{'t', 'r', 'a', 'f'}: true,
	{'m', 'f', 'r', 'a'}: true,
	{'u', 'd', 't', 'a'}: true,
	{'m', 'e', 't', 'a'}: true,
	{'i', 'p', 'r', 'o'}: true,
	{'s', 'i', 'n', 'f'}: true,
	{'s', 'c', 'h', 'i'}: true,
	{'d', 'i', 'n', 'f'}: true,
	{'i', 'p', 'r', 'p'}: true,
	{'i', 'p', 'c', 'o'}: true,
}

// IsContainer reports whether boxes of type t are recursed into by Scan.
func IsContainer(t BoxType) bool { return containerTypes[t] }

// BoxInfoLite is a transient, header-only record of a single box discovered
// during a Scan. It never holds payload bytes.
type BoxInfoLite struct {
	// Path is the slash-separated ancestor chain, including this box's own
	// type, e.g. "/moov/trak/mdia/minf/stbl/stco".
	Path string
	// Offset is the absolute byte offset of the box header's first byte.
	Offset uint64
	// Size is the total box size, header included, in bytes.
	Size uint64
	// HeaderSize is the number of bytes occupied by size/type/large-size/
	// usertype, i.e. Offset+HeaderSize is the first payload byte.
	HeaderSize uint64
	// Type is the raw 4-byte box type.
	Type BoxType
	// IsUUID is true when Type == TypeUUID; UUID is then meaningful.
	IsUUID bool
	// UUID is the 16-byte usertype of a `uuid` box. Nil for non-uuid boxes.
	UUID *uuid.UUID
}

// PayloadOffset returns the absolute offset of the first payload byte.
func (b BoxInfoLite) PayloadOffset() uint64 { return b.Offset + b.HeaderSize }

// PayloadSize returns the number of payload bytes (box size minus header).
func (b BoxInfoLite) PayloadSize() uint64 { return b.Size - b.HeaderSize }

// End returns the offset one past the last byte of the box.
func (b BoxInfoLite) End() uint64 { return b.Offset + b.Size }
