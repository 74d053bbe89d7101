package bmffbox

import "strings"

// IsTopLevel reports whether path names a box directly under the file root
// (exactly one "/"), as produced by Scan.
func IsTopLevel(path string) bool { return strings.Count(path, "/") == 1 }

// FragmentChunk is the byte window of one moof..next-moof-or-EOF fragment,
// per spec §4.7(b): a chunk begins at a moof and extends through the
// following mdat, up to the next top-level moof or end of stream.
type FragmentChunk struct {
	Start uint64
	End   uint64
}

// ClusterFragmentChunks finds every top-level moof box in boxes (as
// produced by Scan) and returns the chunk window each one anchors, in file
// order.
func ClusterFragmentChunks(boxes []BoxInfoLite, fileLen uint64) []FragmentChunk {
	var moofOffsets []uint64
	for _, b := range boxes {
		if b.Type == TypeMoof && IsTopLevel(b.Path) {
			moofOffsets = append(moofOffsets, b.Offset)
		}
	}

	chunks := make([]FragmentChunk, len(moofOffsets))
	for i, off := range moofOffsets {
		end := fileLen
		if i+1 < len(moofOffsets) {
			end = moofOffsets[i+1]
		}
		chunks[i] = FragmentChunk{Start: off, End: end}
	}
	return chunks
}

// HasTopLevelMoof reports whether any top-level moof box is present.
func HasTopLevelMoof(boxes []BoxInfoLite) bool {
	for _, b := range boxes {
		if b.Type == TypeMoof && IsTopLevel(b.Path) {
			return true
		}
	}
	return false
}
