package verify_test

import "encoding/binary"

// box builds a minimal, non-large, non-uuid ISOBMFF box: size(4)|type(4)|payload.
func box(boxType string, payload []byte) []byte {
	if len(boxType) != 4 {
		panic("box type must be 4 bytes")
	}
	size := 8 + len(payload)
	buf := make([]byte, 0, size)
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(size))
	buf = append(buf, sizeBuf[:]...)
	buf = append(buf, boxType...)
	buf = append(buf, payload...)
	return buf
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// wholeFileAsset builds a tiny non-fragmented asset: ftyp + moov(mvhd).
func wholeFileAsset() []byte {
	mvhd := box("mvhd", []byte{0, 0, 0, 0})
	moov := box("moov", mvhd)
	ftyp := box("ftyp", []byte("isom"))
	return concat(ftyp, moov)
}

// fragmentedAsset builds ftyp + moov(mvhd) followed by n moof(mfhd)+mdat
// fragments of the given payload size.
func fragmentedAsset(n int, mdatPayloadSize int) []byte {
	mvhd := box("mvhd", []byte{0, 0, 0, 0})
	moov := box("moov", mvhd)
	ftyp := box("ftyp", []byte("isom"))

	out := concat(ftyp, moov)
	for i := 0; i < n; i++ {
		mfhd := box("mfhd", []byte{0, 0, 0, byte(i)})
		moof := box("moof", mfhd)
		payload := make([]byte, mdatPayloadSize)
		for j := range payload {
			payload[j] = byte(i*7 + j)
		}
		mdat := box("mdat", payload)
		out = concat(out, moof, mdat)
	}
	return out
}
