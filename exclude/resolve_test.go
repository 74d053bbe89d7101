package exclude_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/exclude"
)

func box(boxType string, payload []byte) []byte {
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

func scanBytes(t *testing.T, data []byte) (*bmffbox.ScanResult, *bytes.Reader) {
	t.Helper()
	r := bytes.NewReader(data)
	scan, err := bmffbox.Scan(r)
	require.NoError(t, err)
	return scan, r
}

func TestResolveWholeBoxRule(t *testing.T) {
	stco := box("stco", []byte{0, 0, 0, 1, 0, 0, 0, 2})
	stbl := box("stbl", stco)
	data := concat(box("ftyp", []byte("isom")), box("moov", box("trak", box("mdia", box("minf", stbl)))))

	scan, r := scanBytes(t, data)
	rule := assertion.NewExclusionsMap("/moov/trak/mdia/minf/stbl/stco")

	resolved, err := exclude.Resolve(r, scan.Boxes, []assertion.ExclusionsMap{rule}, nil, false)
	require.NoError(t, err)
	require.Len(t, resolved.Ranges, 1)

	var want bmffbox.BoxInfoLite
	for _, b := range scan.Boxes {
		if b.Type == (bmffbox.BoxType{'s', 't', 'c', 'o'}) {
			want = b
		}
	}
	assert.Equal(t, want.Offset, resolved.Ranges[0].Offset)
	assert.Equal(t, want.Size, resolved.Ranges[0].Length)
	assert.Nil(t, resolved.BoxOffsets[0])
}

func TestResolveV2AnnotatesBoxOffset(t *testing.T) {
	stco := box("stco", []byte{0, 0, 0, 1})
	data := concat(box("ftyp", []byte("isom")), box("moov", stco))

	scan, r := scanBytes(t, data)
	rule := assertion.NewExclusionsMap("/moov/stco")

	resolved, err := exclude.Resolve(r, scan.Boxes, []assertion.ExclusionsMap{rule}, nil, true)
	require.NoError(t, err)
	require.Len(t, resolved.Ranges, 1)
	require.NotNil(t, resolved.BoxOffsets[0])
	assert.Equal(t, resolved.Ranges[0].Offset, *resolved.BoxOffsets[0])
}

func TestResolveSubsetRule(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	data := box("free", payload)
	scan, r := scanBytes(t, data)

	rule := assertion.NewExclusionsMap("/free")
	rule.Subset = []assertion.SubsetMap{{Offset: 2, Length: 0}}

	resolved, err := exclude.Resolve(r, scan.Boxes, []assertion.ExclusionsMap{rule}, nil, false)
	require.NoError(t, err)
	require.Len(t, resolved.Ranges, 1)
	assert.Equal(t, scan.Boxes[0].PayloadOffset()+2, resolved.Ranges[0].Offset)
	assert.Equal(t, scan.Boxes[0].PayloadSize()-2, resolved.Ranges[0].Length)
}

func TestResolveDataFilterRejectsNonMatchingBox(t *testing.T) {
	data := concat(box("free", []byte{1, 2, 3, 4}), box("free", []byte{9, 9, 9, 9}))
	scan, r := scanBytes(t, data)

	rule := assertion.NewExclusionsMap("/free")
	rule.Data = []assertion.DataMap{{Offset: 0, Value: []byte{1, 2}}}

	resolved, err := exclude.Resolve(r, scan.Boxes, []assertion.ExclusionsMap{rule}, nil, false)
	require.NoError(t, err)
	require.Len(t, resolved.Ranges, 1)
	assert.Equal(t, scan.Boxes[0].Offset, resolved.Ranges[0].Offset)
}

func TestResolveMandatoryC2PAExclusions(t *testing.T) {
	data := box("ftyp", []byte("isom"))
	scan, r := scanBytes(t, data)

	c2paBoxes := []bmffbox.C2PABox{{Offset: 100, Size: 40, HeaderSize: 8}}
	resolved, err := exclude.Resolve(r, scan.Boxes, nil, c2paBoxes, false)
	require.NoError(t, err)
	require.Len(t, resolved.Ranges, 1)
	assert.Equal(t, uint64(100), resolved.Ranges[0].Offset)
	assert.Equal(t, uint64(40), resolved.Ranges[0].Length)
}

func TestResolveCoalescesOverlappingRanges(t *testing.T) {
	data := box("ftyp", []byte("isom12345678"))
	scan, r := scanBytes(t, data)

	rule1 := assertion.NewExclusionsMap("/ftyp")
	length := uint32(6)
	rule1.Length = &length

	c2paBoxes := []bmffbox.C2PABox{{Offset: 0, Size: 10, HeaderSize: 8}}

	resolved, err := exclude.Resolve(r, scan.Boxes, []assertion.ExclusionsMap{rule1}, c2paBoxes, false)
	require.NoError(t, err)
	require.Len(t, resolved.Ranges, 1)
	assert.Equal(t, uint64(0), resolved.Ranges[0].Offset)
	assert.Equal(t, uint64(10), resolved.Ranges[0].Length)
}

func TestResolveExactDropsNonMatchingHeaderForm(t *testing.T) {
	var hdr [16]byte
	binary.BigEndian.PutUint32(hdr[0:4], 1)
	copy(hdr[4:8], "mdat")
	binary.BigEndian.PutUint64(hdr[8:16], 24)
	data := append(hdr[:], make([]byte, 8)...)

	scan, r := scanBytes(t, data)
	rule := assertion.NewExclusionsMap("/mdat")
	exact := true
	rule.Exact = &exact

	resolved, err := exclude.Resolve(r, scan.Boxes, []assertion.ExclusionsMap{rule}, nil, false)
	require.NoError(t, err)
	assert.Empty(t, resolved.Ranges)
}
