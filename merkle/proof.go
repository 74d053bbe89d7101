package merkle

// GetProofByIndex returns the inclusion proof for the leaf at i, stopping
// after at most maxDepth layers. Each returned entry is a sibling hash for
// one layer; a layer where i's ancestor is the lone trailing node
// contributes no entry at all (see package doc).
func (t *Tree) GetProofByIndex(i uint64, maxDepth int) ([][]byte, error) {
	if i >= uint64(t.LeafCount()) {
		return nil, ErrIndexOutOfRange
	}

	limit := t.Depth()
	if maxDepth < limit {
		limit = maxDepth
	}

	proof := make([][]byte, 0, limit)
	index := i
	for layer := 0; layer < limit; layer++ {
		cur := t.layers[layer]
		size := uint64(len(cur))

		switch {
		case index%2 == 1:
			proof = append(proof, cur[index-1])
		case index+1 < size:
			proof = append(proof, cur[index+1])
		}
		index /= 2
	}

	return proof, nil
}
