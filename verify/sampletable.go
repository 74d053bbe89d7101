package verify

import (
	"encoding/binary"
	"strings"

	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
)

// sampleTable is one track's chunk layout: the absolute byte offset of each
// chunk, and the size of each sample within it, already expanded from the
// compact stsc/stco/co64/stsz encodings into one entry per chunk/sample.
type sampleTable struct {
	chunkOffsets    []uint64
	samplesPerChunk []uint32
	sampleSizes     []uint32
}

func (t sampleTable) chunkCount() int { return len(t.chunkOffsets) }

// chunkByteRange returns the [start, end) byte range of chunk c's sample
// data, assuming (as this module does throughout) that a chunk's samples
// are stored contiguously, the layout real encoders produce.
func (t sampleTable) chunkByteRange(c int) (uint64, uint64) {
	start := t.chunkOffsets[c]
	sampleIdx := 0
	for i := 0; i < c; i++ {
		sampleIdx += int(t.samplesPerChunk[i])
	}
	var total uint64
	for s := 0; s < int(t.samplesPerChunk[c]); s++ {
		total += uint64(t.sampleSizes[sampleIdx+s])
	}
	return start, start + total
}

// trackID reads the track_ID field out of a trak box's tkhd child.
func trackID(r bmffbox.Reader, boxes []bmffbox.BoxInfoLite, trak bmffbox.BoxInfoLite) (uint32, error) {
	tkhd, ok := findChild(boxes, trak, bmffbox.TypeTkhd)
	if !ok {
		return 0, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "trak at offset %d has no tkhd", trak.Offset)
	}
	payload, err := bmffbox.ReadPayload(r, tkhd)
	if err != nil {
		return 0, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading tkhd")
	}
	if len(payload) < 4 {
		return 0, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated tkhd")
	}
	version := payload[0]
	var offset int
	if version == 1 {
		offset = 4 + 8 + 8
	} else {
		offset = 4 + 4 + 4
	}
	if len(payload) < offset+4 {
		return 0, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated tkhd track_ID field")
	}
	return binary.BigEndian.Uint32(payload[offset : offset+4]), nil
}

// buildSampleTable reads a trak's stsc/stco-or-co64/stsz children and
// expands them into a sampleTable.
func buildSampleTable(r bmffbox.Reader, boxes []bmffbox.BoxInfoLite, trak bmffbox.BoxInfoLite) (sampleTable, error) {
	stsc, ok := findChild(boxes, trak, bmffbox.TypeStsc)
	if !ok {
		return sampleTable{}, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "trak at offset %d has no stsc", trak.Offset)
	}
	stsz, ok := findChild(boxes, trak, bmffbox.TypeStsz)
	if !ok {
		return sampleTable{}, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "trak at offset %d has no stsz", trak.Offset)
	}

	var chunkOffsets []uint64
	if co64, ok := findChild(boxes, trak, bmffbox.TypeCo64); ok {
		offsets, err := parseChunkOffsets64(r, co64)
		if err != nil {
			return sampleTable{}, err
		}
		chunkOffsets = offsets
	} else if stco, ok := findChild(boxes, trak, bmffbox.TypeStco); ok {
		offsets, err := parseChunkOffsets32(r, stco)
		if err != nil {
			return sampleTable{}, err
		}
		chunkOffsets = offsets
	} else {
		return sampleTable{}, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "trak at offset %d has neither stco nor co64", trak.Offset)
	}

	samplesPerChunk, err := parseSamplesPerChunk(r, stsc, len(chunkOffsets))
	if err != nil {
		return sampleTable{}, err
	}

	sampleSizes, err := parseSampleSizes(r, stsz)
	if err != nil {
		return sampleTable{}, err
	}

	return sampleTable{chunkOffsets: chunkOffsets, samplesPerChunk: samplesPerChunk, sampleSizes: sampleSizes}, nil
}

func findChild(boxes []bmffbox.BoxInfoLite, parent bmffbox.BoxInfoLite, t bmffbox.BoxType) (bmffbox.BoxInfoLite, bool) {
	prefix := parent.Path + "/"
	for _, b := range boxes {
		if b.Type == t && strings.HasPrefix(b.Path, prefix) {
			return b, true
		}
	}
	return bmffbox.BoxInfoLite{}, false
}

func parseChunkOffsets32(r bmffbox.Reader, box bmffbox.BoxInfoLite) ([]uint64, error) {
	payload, err := bmffbox.ReadPayload(r, box)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading stco")
	}
	if len(payload) < 8 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated stco")
	}
	count := binary.BigEndian.Uint32(payload[4:8])
	if len(payload) < 8+int(count)*4 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated stco entries")
	}
	out := make([]uint64, count)
	for i := 0; i < int(count); i++ {
		out[i] = uint64(binary.BigEndian.Uint32(payload[8+i*4 : 12+i*4]))
	}
	return out, nil
}

func parseChunkOffsets64(r bmffbox.Reader, box bmffbox.BoxInfoLite) ([]uint64, error) {
	payload, err := bmffbox.ReadPayload(r, box)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading co64")
	}
	if len(payload) < 8 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated co64")
	}
	count := binary.BigEndian.Uint32(payload[4:8])
	if len(payload) < 8+int(count)*8 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated co64 entries")
	}
	out := make([]uint64, count)
	for i := 0; i < int(count); i++ {
		out[i] = binary.BigEndian.Uint64(payload[8+i*8 : 16+i*8])
	}
	return out, nil
}

func parseSamplesPerChunk(r bmffbox.Reader, box bmffbox.BoxInfoLite, chunkCount int) ([]uint32, error) {
	payload, err := bmffbox.ReadPayload(r, box)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading stsc")
	}
	if len(payload) < 8 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated stsc")
	}
	entryCount := int(binary.BigEndian.Uint32(payload[4:8]))
	if len(payload) < 8+entryCount*12 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated stsc entries")
	}

	type entry struct {
		firstChunk      uint32
		samplesPerChunk uint32
	}
	entries := make([]entry, entryCount)
	for i := 0; i < entryCount; i++ {
		base := 8 + i*12
		entries[i] = entry{
			firstChunk:      binary.BigEndian.Uint32(payload[base : base+4]),
			samplesPerChunk: binary.BigEndian.Uint32(payload[base+4 : base+8]),
		}
	}

	out := make([]uint32, chunkCount)
	for i, e := range entries {
		end := uint32(chunkCount) + 1
		if i+1 < len(entries) {
			end = entries[i+1].firstChunk
		}
		for c := e.firstChunk; c < end && int(c)-1 < chunkCount; c++ {
			out[c-1] = e.samplesPerChunk
		}
	}
	return out, nil
}

func parseSampleSizes(r bmffbox.Reader, box bmffbox.BoxInfoLite) ([]uint32, error) {
	payload, err := bmffbox.ReadPayload(r, box)
	if err != nil {
		return nil, bmffhasherr.Wrap(bmffhasherr.KindInvalidAsset, err, "reading stsz")
	}
	if len(payload) < 12 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated stsz")
	}
	sampleSize := binary.BigEndian.Uint32(payload[4:8])
	sampleCount := binary.BigEndian.Uint32(payload[8:12])

	out := make([]uint32, sampleCount)
	if sampleSize != 0 {
		for i := range out {
			out[i] = sampleSize
		}
		return out, nil
	}

	if len(payload) < 12+int(sampleCount)*4 {
		return nil, bmffhasherr.New(bmffhasherr.KindInvalidAsset, "truncated stsz entries")
	}
	for i := 0; i < int(sampleCount); i++ {
		out[i] = binary.BigEndian.Uint32(payload[12+i*4 : 16+i*4])
	}
	return out, nil
}
