package hashutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"hash"
	"io"

	"github.com/c2pa-labs/bmffhash/exclude"
)

// ChunkSize bounds how many bytes StreamHash reads into memory at once.
// Whole-file buffering must be avoided in the hashing path (spec §5).
const ChunkSize = 64 * 1024

// ErrUnsupportedAlgorithm is returned by NewHash when alg does not match
// one of the three supported identifiers exactly.
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// NewHash constructs a fresh hash.Hash for alg, matched by exact string
// against "sha256", "sha384", or "sha512".
func NewHash(alg string) (hash.Hash, error) {
	switch alg {
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// StreamHash reads r from offset 0 to its end and digests every byte not
// covered by excl.Ranges. In v2 mode (when a range carries a non-nil
// BoxOffsets entry) the skipped bytes are replaced in the digest input by
// the 8-byte big-endian encoding of that offset, rather than omitted
// outright (spec §4.3).
func StreamHash(r io.ReadSeeker, alg string, excl exclude.Resolved) ([]byte, error) {
	h, err := NewHash(alg)
	if err != nil {
		return nil, err
	}

	length, err := streamLength(r)
	if err != nil {
		return nil, err
	}

	cursor := uint64(0)
	for i, rng := range excl.Ranges {
		if rng.Offset > cursor {
			if err := feedRange(r, h, cursor, rng.Offset); err != nil {
				return nil, err
			}
		}

		boxOffset := excl.BoxOffsets[i]
		if boxOffset != nil {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], *boxOffset)
			h.Write(b[:])
		}

		if rng.End() > cursor {
			cursor = rng.End()
		}
	}

	if cursor < length {
		if err := feedRange(r, h, cursor, length); err != nil {
			return nil, err
		}
	}

	return h.Sum(nil), nil
}

func streamLength(r io.ReadSeeker) (uint64, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	return uint64(end), nil
}

// feedRange digests r[start:end) in ChunkSize pieces.
func feedRange(r io.ReadSeeker, h hash.Hash, start, end uint64) error {
	if _, err := r.Seek(int64(start), io.SeekStart); err != nil {
		return err
	}
	remaining := end - start
	buf := make([]byte, ChunkSize)
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return err
		}
		h.Write(buf[:n])
		remaining -= n
	}
	return nil
}

// Hasher is a caller-owned incremental digest handle, used to aggregate
// non-contiguous sample bytes (one chunk's worth of timed-media samples)
// without buffering them all at once.
type Hasher struct {
	h hash.Hash
}

// NewHasher builds an incremental Hasher for alg.
func NewHasher(alg string) (*Hasher, error) {
	h, err := NewHash(alg)
	if err != nil {
		return nil, err
	}
	return &Hasher{h: h}, nil
}

// Update feeds more bytes into the running digest.
func (hr *Hasher) Update(b []byte) { hr.h.Write(b) }

// Finalize returns the digest over everything fed to Update so far. The
// Hasher must not be reused afterward.
func (hr *Hasher) Finalize() []byte { return hr.h.Sum(nil) }
