package bmffbox

import (
	"fmt"
	"io"
)

// ReadPayload reads a single box's full payload into memory. Scan itself
// never does this for leaf boxes, but callers that need to interpret a
// specific box's contents (stsc/stco/co64 sample tables, uuid box CBOR,
// tkhd) do so explicitly through this helper rather than re-implementing
// seek/read bookkeeping at each call site.
func ReadPayload(r Reader, b BoxInfoLite) ([]byte, error) {
	if _, err := r.Seek(int64(b.PayloadOffset()), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	buf := make([]byte, b.PayloadSize())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	return buf, nil
}
