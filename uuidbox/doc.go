// Package uuidbox builds and back-patches the C2PA UUID boxes a generator
// writes immediately before each fragment's moof (spec §4.4/§4.5): a
// BmffMerkleMap payload reserved at a fixed byte length up front (sized for
// a chosen maximum proof depth and hash algorithm), written once as a
// zeroed placeholder during the first structural pass over the asset, then
// overwritten in place with the real sibling hashes once every fragment's
// leaf hash is known. The box's total length never changes between the two
// passes, so nothing else in the file needs to move.
package uuidbox
