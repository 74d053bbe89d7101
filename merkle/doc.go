/*
Package merkle implements the BMFF-based hash assertion's Merkle engine
(spec §4.4): tree construction from a leaf sequence, index-keyed proof
extraction bounded by a maximum depth, and proof-playback verification
against a stored tree row.

# Lone-trailing-node semantics

This differs from the common Merkle tree construction (used by, e.g., the
Bitcoin/RFC 6962 family) that duplicates an unpaired trailing node to force
every layer to even size. Here, an unpaired trailing node simply bubbles up
to the next layer unchanged — no duplication, no padding. A proof for a
leaf whose ancestor is ever the lone trailing node at some layer omits the
proof entry for that layer entirely; the index divides by two and carries
on. Tree construction and proof playback must agree on this exactly, or a
proof generated by one will not replay against the other.

H(alg, left, right) below always means "hash left || right with the
algorithm selected by alg" — alg chooses which hash.Hash implementation to
use (see package hashutil), it is not itself hashed in as a domain
separator.
*/
package merkle
