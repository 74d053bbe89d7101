package exclude

import (
	"io"
	"sort"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
)

// HashRange is an absolute, half-open [Offset, Offset+Length) byte range
// excluded from a digest.
type HashRange struct {
	Offset uint64
	Length uint64
}

// End returns the offset one past the last excluded byte.
func (r HashRange) End() uint64 { return r.Offset + r.Length }

// Resolved is the output of Resolve: a sorted range list plus, in v2 mode,
// a parallel BoxOffset annotation naming the absolute offset of the box a
// whole-box range committed to, for the hasher to substitute in place of
// the skipped bytes (spec §4.3).
type Resolved struct {
	Ranges     []HashRange
	BoxOffsets []*uint64
}

type annotatedRange struct {
	HashRange
	boxOffset *uint64
}

// Resolve applies every rule in rules against boxes (as produced by
// bmffbox.Scan), merges in the mandatory C2PA exclusions from c2paBoxes,
// and returns the coalesced result. r must be the same stream boxes was
// scanned from; it is used only to read the handful of payload-prefix
// bytes needed for data/version/flags predicates. v2 controls whether
// whole-box ranges carry a BoxOffset substitution annotation.
func Resolve(r io.ReadSeeker, boxes []bmffbox.BoxInfoLite, rules []assertion.ExclusionsMap, c2paBoxes []bmffbox.C2PABox, v2 bool) (Resolved, error) {
	var all []annotatedRange

	for _, rule := range rules {
		matched, err := resolveRule(r, boxes, rule, v2)
		if err != nil {
			return Resolved{}, err
		}
		all = append(all, matched...)
	}

	for _, cb := range c2paBoxes {
		ar := annotatedRange{HashRange: HashRange{Offset: cb.Offset, Length: cb.Size}}
		if v2 {
			off := cb.Offset
			ar.boxOffset = &off
		}
		all = append(all, ar)
	}

	merged := coalesce(all)

	resolved := Resolved{
		Ranges:     make([]HashRange, len(merged)),
		BoxOffsets: make([]*uint64, len(merged)),
	}
	for i, m := range merged {
		resolved.Ranges[i] = m.HashRange
		resolved.BoxOffsets[i] = m.boxOffset
	}
	return resolved, nil
}

func resolveRule(r io.ReadSeeker, boxes []bmffbox.BoxInfoLite, rule assertion.ExclusionsMap, v2 bool) ([]annotatedRange, error) {
	var out []annotatedRange

	for _, box := range boxes {
		if box.Path != rule.XPath {
			continue
		}

		if rule.Exact != nil && *rule.Exact && box.HeaderSize != 8 {
			// "exact" requires a plain 32-bit size/type header with no
			// large-size or uuid extension; anything else fails the rule
			// for this box.
			continue
		}

		ok, err := matchesDataAndTypeFilters(r, box, rule)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		out = append(out, emitRanges(box, rule, v2)...)
	}

	return out, nil
}

func matchesDataAndTypeFilters(r io.ReadSeeker, box bmffbox.BoxInfoLite, rule assertion.ExclusionsMap) (bool, error) {
	if rule.Version == nil && rule.Flags == nil && len(rule.Data) == 0 {
		return true, nil
	}

	if rule.Version != nil || rule.Flags != nil {
		if box.PayloadSize() < 4 {
			return false, nil
		}
		prefix, err := readAt(r, box.PayloadOffset(), 4)
		if err != nil {
			return false, err
		}
		if rule.Version != nil && prefix[0] != *rule.Version {
			return false, nil
		}
		if rule.Flags != nil && !bytesEqual(prefix[1:4], rule.Flags) {
			return false, nil
		}
	}

	for _, d := range rule.Data {
		if uint64(d.Offset)+uint64(len(d.Value)) > box.PayloadSize() {
			return false, nil
		}
		got, err := readAt(r, box.PayloadOffset()+uint64(d.Offset), len(d.Value))
		if err != nil {
			return false, err
		}
		if !bytesEqual(got, d.Value) {
			return false, nil
		}
	}

	return true, nil
}

func emitRanges(box bmffbox.BoxInfoLite, rule assertion.ExclusionsMap, v2 bool) []annotatedRange {
	if len(rule.Subset) > 0 {
		out := make([]annotatedRange, 0, len(rule.Subset))
		for _, s := range rule.Subset {
			start := box.PayloadOffset() + uint64(s.Offset)
			length := uint64(s.Length)
			if length == 0 {
				if start >= box.End() {
					continue
				}
				length = box.End() - start
			}
			if length == 0 {
				continue
			}
			out = append(out, annotatedRange{HashRange: HashRange{Offset: start, Length: length}})
		}
		return out
	}

	if rule.Length != nil {
		length := uint64(*rule.Length)
		if length > box.Size {
			length = box.Size
		}
		if length == 0 {
			return nil
		}
		return []annotatedRange{{HashRange: HashRange{Offset: box.Offset, Length: length}}}
	}

	ar := annotatedRange{HashRange: HashRange{Offset: box.Offset, Length: box.Size}}
	if v2 {
		off := box.Offset
		ar.boxOffset = &off
	}
	return []annotatedRange{ar}
}

func readAt(r io.ReadSeeker, offset uint64, n int) ([]byte, error) {
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// coalesce sorts by offset and merges overlapping/adjacent ranges that
// carry no box-offset annotation. A range with a box-offset annotation is
// never merged into a neighbor (merging would make the per-box
// substitution ambiguous); exact duplicates are still deduplicated,
// preferring whichever copy carries the annotation.
func coalesce(ranges []annotatedRange) []annotatedRange {
	filtered := ranges[:0:0]
	for _, r := range ranges {
		if r.Length > 0 {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Offset != filtered[j].Offset {
			return filtered[i].Offset < filtered[j].Offset
		}
		return filtered[i].Length < filtered[j].Length
	})

	out := []annotatedRange{filtered[0]}
	for _, r := range filtered[1:] {
		last := &out[len(out)-1]

		if r.Offset == last.Offset && r.Length == last.Length {
			if last.boxOffset == nil && r.boxOffset != nil {
				last.boxOffset = r.boxOffset
			}
			continue
		}

		if last.boxOffset == nil && r.boxOffset == nil && r.Offset <= last.End() {
			if r.End() > last.End() {
				last.Length = r.End() - last.Offset
			}
			continue
		}

		out = append(out, r)
	}

	return out
}
