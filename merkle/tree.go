package merkle

import "github.com/c2pa-labs/bmffhash/hashutil"

// Tree is a fully-materialized Merkle tree: layers[0] is the leaf row,
// layers[len(layers)-1] is the single-element root row. Every intermediate
// layer is the pairwise-hashed reduction of the one below it, with an
// unpaired trailing node bubbling up unchanged (see package doc).
type Tree struct {
	alg    string
	layers [][][]byte
}

// BuildTree constructs a Tree over leaves using alg to combine sibling
// pairs. leaves is copied into the tree's base layer; the caller's slice
// is not retained.
func BuildTree(alg string, leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	base := make([][]byte, len(leaves))
	copy(base, leaves)

	layers := [][][]byte{base}
	cur := base
	for len(cur) > 1 {
		next, err := reduceLayer(alg, cur)
		if err != nil {
			return nil, err
		}
		layers = append(layers, next)
		cur = next
	}

	return &Tree{alg: alg, layers: layers}, nil
}

func reduceLayer(alg string, layer [][]byte) ([][]byte, error) {
	out := make([][]byte, 0, (len(layer)+1)/2)
	i := 0
	for ; i+1 < len(layer); i += 2 {
		h, err := hashPair(alg, layer[i], layer[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if i < len(layer) {
		// Lone trailing node: bubble up unchanged, no duplication.
		out = append(out, layer[i])
	}
	return out, nil
}

func hashPair(alg string, left, right []byte) ([]byte, error) {
	h, err := hashutil.NewHash(alg)
	if err != nil {
		return nil, err
	}
	h.Write(left)
	h.Write(right)
	return h.Sum(nil), nil
}

// LeafCount returns the number of leaves the tree was built from.
func (t *Tree) LeafCount() int { return len(t.layers[0]) }

// Depth returns the number of layers above the leaf layer, i.e. the index
// of the root layer (layers[Depth()] has exactly one element).
func (t *Tree) Depth() int { return len(t.layers) - 1 }

// Row returns the tree's layer at the given depth, clamped to the root
// layer if depth exceeds it. This is the row a generator stores as
// MerkleMap.Hashes.
func (t *Tree) Row(depth int) [][]byte {
	d := depth
	if d > t.Depth() {
		d = t.Depth()
	}
	return t.layers[d]
}

// StoredDepth returns min(maxDepth, Depth()), the layer index a generator
// actually persists given a requested maximum proof depth.
func (t *Tree) StoredDepth(maxDepth int) int {
	if maxDepth < t.Depth() {
		return maxDepth
	}
	return t.Depth()
}

// Root returns the single root hash (Row(Depth())[0]).
func (t *Tree) Root() []byte { return t.layers[t.Depth()][0] }

// LayerSizes returns the leaf-count-derived size of every layer, without
// requiring a fully materialized Tree. Used by verifiers that only know
// the leaf count and a stored row, not the full tree.
func LayerSizes(leafCount uint64) []uint64 {
	sizes := []uint64{leafCount}
	for sizes[len(sizes)-1] > 1 {
		n := sizes[len(sizes)-1]
		sizes = append(sizes, (n+1)/2)
	}
	return sizes
}

// FullDepth returns the root layer index for a tree with leafCount leaves,
// i.e. len(LayerSizes(leafCount))-1.
func FullDepth(leafCount uint64) int {
	return len(LayerSizes(leafCount)) - 1
}

// StoredDepthForCount returns min(maxDepth, FullDepth(leafCount)).
func StoredDepthForCount(leafCount uint64, maxDepth int) int {
	full := FullDepth(leafCount)
	if maxDepth < full {
		return maxDepth
	}
	return full
}

// DeriveStoredDepth finds the layer a generator must have stored given only
// the leaf count and the observed row length: a verifier never learns the
// max_depth a generator used, only the resulting row. Returns the smallest
// layer index whose size matches rowLen, and false if none matches.
func DeriveStoredDepth(leafCount uint64, rowLen int) (int, bool) {
	sizes := LayerSizes(leafCount)
	for d, size := range sizes {
		if size == uint64(rowLen) {
			return d, true
		}
	}
	return 0, false
}
