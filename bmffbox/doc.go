/*
Package bmffbox implements the box-level scanner for ISO Base Media File
Format (ISOBMFF / MP4) streams used by the BMFF-based hash assertion.

# Motivation for a flat box index

An ISOBMFF file is a tree of nested "boxes" (also called atoms): a 4-byte
size, a 4-byte type, optionally extended by a 64-bit large-size and/or a
16-byte usertype for `uuid` boxes, followed by a payload that is either raw
bytes or more boxes. Everything this module needs to do — finding exclusion
ranges, clustering fragments, locating the C2PA UUID boxes — only needs to
know where each box starts, how big it is, and its ancestor path. It never
needs to interpret payloads (sample tables, track headers, and so on are
none of this package's business).

So rather than build a tree with parent/child pointers (which forces
consumers to recurse to find anything, and creates cyclic ownership
questions), Scan walks the stream once, depth-first, and returns a flat
`[]BoxInfoLite` with slash-separated ancestor paths, e.g. `/moov/trak/mdia`.
This mirrors the header-only walk idiom of the pack's `tetsuo-isobmff`
reference (box type tables) while keeping the traversal itself bespoke to
this module's exclusion-range and C2PA-box-summary needs, rather than
depending on a full third-party demuxer.

Scan never reads payload bytes for leaf boxes and never buffers a box's
contents; it reads only the fixed-size header fields needed to compute the
next box boundary.
*/
package bmffbox
