package merkle

import "bytes"

// CheckMerkleTree replays proof against leafHash, the leaf at index out of
// n total leaves, and compares the result to storedRow[curIndex] after
// consuming at most StoredDepthForCount(n, maxDepth) layers of proof. It
// mirrors GetProofByIndex's lone-trailing-node rule exactly: a layer where
// the current index is the lone trailing node consumes no proof entry.
func CheckMerkleTree(alg string, leafHash []byte, index uint64, n uint64, maxDepth int, proof [][]byte, storedRow [][]byte) (bool, error) {
	if index >= n {
		return false, ErrIndexOutOfRange
	}

	sizes := LayerSizes(n)
	depth := StoredDepthForCount(n, maxDepth)

	curHash := leafHash
	curIndex := index
	consumed := 0

	for layer := 0; layer < depth; layer++ {
		size := sizes[layer]

		var sibling []byte
		switch {
		case curIndex%2 == 1:
			if consumed >= len(proof) {
				return false, ErrProofUnderrun
			}
			sibling = proof[consumed]
			consumed++
			h, err := hashPair(alg, sibling, curHash)
			if err != nil {
				return false, err
			}
			curHash = h
		case curIndex+1 < size:
			if consumed >= len(proof) {
				return false, ErrProofUnderrun
			}
			sibling = proof[consumed]
			consumed++
			h, err := hashPair(alg, curHash, sibling)
			if err != nil {
				return false, err
			}
			curHash = h
		}
		// Lone trailing node: curHash bubbles up unchanged, no proof consumed.

		curIndex /= 2
	}

	if consumed != len(proof) {
		return false, ErrProofOverrun
	}

	if curIndex >= uint64(len(storedRow)) {
		return false, ErrStoredRowIndex
	}

	return bytes.Equal(curHash, storedRow[curIndex]), nil
}
