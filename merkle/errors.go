package merkle

import "errors"

var (
	// ErrNoLeaves is returned by BuildTree when given an empty leaf list.
	ErrNoLeaves = errors.New("merkle tree requires at least one leaf")
	// ErrIndexOutOfRange is returned when a leaf index is outside [0, leafCount).
	ErrIndexOutOfRange = errors.New("leaf index out of range")
	// ErrProofUnderrun is returned by CheckMerkleTree when the supplied
	// proof runs out before the stored row is reached.
	ErrProofUnderrun = errors.New("merkle proof ran out before reaching the stored row")
	// ErrProofOverrun is returned by CheckMerkleTree when the supplied
	// proof has leftover entries the playback never consumed.
	ErrProofOverrun = errors.New("merkle proof has unconsumed entries")
	// ErrStoredRowIndex is returned when the computed stored-row index
	// falls outside the supplied stored row.
	ErrStoredRowIndex = errors.New("stored row index out of range")
)
