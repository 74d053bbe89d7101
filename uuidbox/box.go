package uuidbox

import (
	"encoding/binary"

	"github.com/google/uuid"
)

const (
	largeSizeSentinel = uint32(1)
	headerSizeType     = 8
	largeSizeBytes     = 8
	userTypeBytes      = 16
)

// boxType is always "uuid" for the boxes this package writes.
var boxType = [4]byte{'u', 'u', 'i', 'd'}

// Build assembles a complete uuid box: size(+large size)|type|usertype|payload.
// It picks the compact 32-bit size form unless the total box length would
// overflow it, matching how real encoders avoid the large-size extension
// unless it's actually needed.
func Build(userType uuid.UUID, payload []byte) []byte {
	small := uint64(headerSizeType) + userTypeBytes + uint64(len(payload))

	if small <= 0xFFFFFFFF {
		buf := make([]byte, 0, small)
		var sizeBuf [4]byte
		binary.BigEndian.PutUint32(sizeBuf[:], uint32(small))
		buf = append(buf, sizeBuf[:]...)
		buf = append(buf, boxType[:]...)
		ub := userType
		buf = append(buf, ub[:]...)
		buf = append(buf, payload...)
		return buf
	}

	large := small + largeSizeBytes
	buf := make([]byte, 0, large)
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], largeSizeSentinel)
	buf = append(buf, sizeBuf[:]...)
	buf = append(buf, boxType[:]...)
	var largeBuf [8]byte
	binary.BigEndian.PutUint64(largeBuf[:], large)
	buf = append(buf, largeBuf[:]...)
	ub := userType
	buf = append(buf, ub[:]...)
	buf = append(buf, payload...)
	return buf
}

// HeaderLen returns the header length Build used for a payload of the
// given length: 24 bytes (size+type+usertype) normally, or 32 bytes when the
// 8-byte large-size extension is required. Callers use
// this to compute a box's payload offset without re-running Build.
func HeaderLen(payloadLen int) uint64 {
	small := uint64(headerSizeType) + userTypeBytes + uint64(payloadLen)
	if small <= 0xFFFFFFFF {
		return headerSizeType + userTypeBytes
	}
	return headerSizeType + largeSizeBytes + userTypeBytes
}
