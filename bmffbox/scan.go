package bmffbox

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Reader is the minimal handle Scan requires: random access via Seek, plus
// Read for the (small, header-only) byte ranges it consumes.
type Reader interface {
	io.Reader
	io.Seeker
}

// ScanResult is the output of a single Scan call: the flat, depth-first box
// index, and the classified C2PA UUID box summary derived from it.
type ScanResult struct {
	Boxes []BoxInfoLite
	C2PA  C2PASummary
}

const (
	headerSizeTypeBytes = 8  // size(4) + type(4)
	largeSizeBytes      = 8  // extended 64-bit size
	userTypeBytes       = 16 // uuid box usertype
)

// Scan walks an ISOBMFF byte stream from offset 0 to its end and returns a
// flat, depth-first box index plus the C2PA UUID box summary. It never
// reads payload bytes for leaf boxes; it only consumes header fields and
// seeks over the rest.
func Scan(r Reader) (*ScanResult, error) {
	fileEnd, err := streamLength(r)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	boxes, err := scanLevel(r, 0, fileEnd, "")
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		Boxes: boxes,
		C2PA:  classifyC2PABoxes(boxes),
	}, nil
}

func streamLength(r Reader) (uint64, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if end < 0 {
		return 0, fmt.Errorf("%w: negative stream length", ErrMalformedHeader)
	}
	return uint64(end), nil
}

// scanLevel reads consecutive sibling boxes starting at offset, stopping at
// end, recursing into container types. ancestorPath is the path prefix
// (without trailing slash) of the parent box, "" at the top level.
func scanLevel(r Reader, offset, end uint64, ancestorPath string) ([]BoxInfoLite, error) {
	var out []BoxInfoLite

	for offset < end {
		info, err := readBoxHeader(r, offset, end, ancestorPath)
		if err != nil {
			return nil, err
		}
		out = append(out, info)

		if IsContainer(info.Type) {
			children, err := scanLevel(r, info.PayloadOffset(), info.End(), info.Path)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		}

		offset = info.End()
	}

	if offset != end {
		return nil, fmt.Errorf("%w: sibling boxes overrun container boundary", ErrMalformedHeader)
	}

	return out, nil
}

func readBoxHeader(r Reader, offset, end uint64, ancestorPath string) (BoxInfoLite, error) {
	if end-offset < headerSizeTypeBytes {
		return BoxInfoLite{}, fmt.Errorf("%w: truncated box header at offset %d", ErrMalformedHeader, offset)
	}

	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return BoxInfoLite{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	var hdr [headerSizeTypeBytes]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return BoxInfoLite{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	declaredSize := uint64(binary.BigEndian.Uint32(hdr[0:4]))
	var boxType BoxType
	copy(boxType[:], hdr[4:8])

	headerSize := uint64(headerSizeTypeBytes)
	size := declaredSize

	if declaredSize == 1 {
		if end-offset < headerSize+largeSizeBytes {
			return BoxInfoLite{}, fmt.Errorf("%w: truncated large-size field at offset %d", ErrMalformedHeader, offset)
		}
		var lb [largeSizeBytes]byte
		if _, err := io.ReadFull(r, lb[:]); err != nil {
			return BoxInfoLite{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		size = binary.BigEndian.Uint64(lb[:])
		headerSize += largeSizeBytes
	} else if declaredSize == 0 {
		// Box extends to the end of its enclosing container (or EOF).
		size = end - offset
	}

	var boxUUID *uuid.UUID
	isUUID := boxType == TypeUUID
	if isUUID {
		if end-offset < headerSize+userTypeBytes {
			return BoxInfoLite{}, fmt.Errorf("%w: truncated usertype at offset %d", ErrMalformedHeader, offset)
		}
		var ub [userTypeBytes]byte
		if _, err := io.ReadFull(r, ub[:]); err != nil {
			return BoxInfoLite{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		u, err := uuid.FromBytes(ub[:])
		if err != nil {
			return BoxInfoLite{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		boxUUID = &u
		headerSize += userTypeBytes
	}

	if size < headerSize {
		return BoxInfoLite{}, fmt.Errorf("%w: box at offset %d declares size %d shorter than its header (%d)", ErrMalformedHeader, offset, size, headerSize)
	}
	if offset+size > end {
		return BoxInfoLite{}, fmt.Errorf("%w: box at offset %d overflows its container (size %d, container end %d)", ErrMalformedHeader, offset, size, end)
	}

	return BoxInfoLite{
		Path:       ancestorPath + "/" + boxType.String(),
		Offset:     offset,
		Size:       size,
		HeaderSize: headerSize,
		Type:       boxType,
		IsUUID:     isUUID,
		UUID:       boxUUID,
	}, nil
}

// classifyC2PABoxes finds the top-level C2PA UUID boxes and pairs the ones
// immediately preceding a moof with that moof; any that are not so paired
// are the (singular) top-level manifest box. An asset with no moof box at
// all has no fragments to pair against, so every top-level C2PA UUID box is
// instead treated as an ordered per-chunk Merkle box for the timed-media
// (moov/stbl) shape.
func classifyC2PABoxes(boxes []BoxInfoLite) C2PASummary {
	var summary C2PASummary

	var topLevel []BoxInfoLite
	hasMoof := false
	for _, b := range boxes {
		if strings.Count(b.Path, "/") == 1 {
			topLevel = append(topLevel, b)
			if b.Type == TypeMoof {
				hasMoof = true
			}
		}
	}

	if !hasMoof {
		for _, b := range topLevel {
			if b.IsUUID && b.UUID != nil && *b.UUID == C2PAUserType {
				summary.ChunkBoxes = append(summary.ChunkBoxes, C2PABox{Offset: b.Offset, Size: b.Size, HeaderSize: b.HeaderSize})
			}
		}
		return summary
	}

	var pending *BoxInfoLite
	flushPendingAsManifest := func() {
		if pending == nil {
			return
		}
		summary.Manifest = &C2PABox{Offset: pending.Offset, Size: pending.Size, HeaderSize: pending.HeaderSize}
		pending = nil
	}

	for i := range topLevel {
		b := topLevel[i]
		if b.IsUUID && b.UUID != nil && *b.UUID == C2PAUserType {
			flushPendingAsManifest()
			cp := b
			pending = &cp
			continue
		}
		if b.Type == TypeMoof && pending != nil {
			summary.Fragments = append(summary.Fragments, FragmentC2PABox{
				UUIDBox:  C2PABox{Offset: pending.Offset, Size: pending.Size, HeaderSize: pending.HeaderSize},
				MoofInfo: b,
			})
			pending = nil
			continue
		}
		flushPendingAsManifest()
	}
	flushPendingAsManifest()

	return summary
}
