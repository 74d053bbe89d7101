package exclude

import "sort"

// Window clips global's ranges to the half-open [start, end) window and adds
// synthetic boundary exclusions for everything outside it, so hashing the
// full-length stream digests exactly that window net of whatever global
// exclusions fall inside it (spec §4.7's per-chunk and per-segment
// exclusion sets). Ranges fully outside the window are dropped; a range
// that only partially overlaps it is also dropped, since every range this
// package produces is box-aligned and boxes never straddle a fragment or
// segment boundary in a well-formed asset.
func Window(global Resolved, start, end, fileLen uint64) Resolved {
	type entry struct {
		rng HashRange
		off *uint64
	}

	var entries []entry
	if start > 0 {
		entries = append(entries, entry{rng: HashRange{Offset: 0, Length: start}})
	}
	if end < fileLen {
		entries = append(entries, entry{rng: HashRange{Offset: end, Length: fileLen - end}})
	}

	for i, r := range global.Ranges {
		if r.Offset < start || r.End() > end {
			continue
		}
		entries = append(entries, entry{rng: r, off: global.BoxOffsets[i]})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].rng.Offset < entries[j].rng.Offset })

	out := Resolved{
		Ranges:     make([]HashRange, len(entries)),
		BoxOffsets: make([]*uint64, len(entries)),
	}
	for i, e := range entries {
		out.Ranges[i] = e.rng
		out.BoxOffsets[i] = e.off
	}
	return out
}
