package generate

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffbox"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/exclude"
	"github.com/c2pa-labs/bmffhash/hashutil"
	"github.com/c2pa-labs/bmffhash/merkle"
)

func writeTempAsset(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.mp4")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestGenHashWholeFileMatchesPlainDigest(t *testing.T) {
	data := wholeFileAsset()
	path := writeTempAsset(t, data)

	h := assertion.New("", "", nil)
	require.NoError(t, GenHash(h, path, "sha256", assertion.DefaultMaxProofDepth))

	want := sha256.Sum256(data)
	assert.Equal(t, want[:], h.Hash())
	assert.Nil(t, h.Merkle())
}

func TestGenHashFragmentedProducesVerifiableTree(t *testing.T) {
	data := fragmentedAsset(5, 32)
	path := writeTempAsset(t, data)

	h := assertion.New("", "", nil)
	require.NoError(t, GenHash(h, path, "sha256", 4))

	require.Len(t, h.Merkle(), 1)
	mm := h.Merkle()[0]
	assert.EqualValues(t, 5, mm.Count)
	assert.NotEmpty(t, mm.InitHash)
	assert.Nil(t, h.Hash())

	// Recompute each chunk's leaf hash independently and confirm the stored
	// row is reachable via the merkle proof for every leaf.
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scan, err := bmffbox.Scan(f)
	require.NoError(t, err)
	fileLen, err := f.Seek(0, 2)
	require.NoError(t, err)

	global, err := exclude.Resolve(f, scan.Boxes, h.Exclusions(), scan.C2PA.AllBoxes(), false)
	require.NoError(t, err)

	chunks := bmffbox.ClusterFragmentChunks(scan.Boxes, uint64(fileLen))
	require.Len(t, chunks, 5)

	leaves := make([][]byte, len(chunks))
	for i, c := range chunks {
		w := exclude.Window(global, c.Start, c.End, uint64(fileLen))
		leafHash, err := hashutil.StreamHash(f, "sha256", w)
		require.NoError(t, err)
		leaves[i] = leafHash
	}

	tree, err := merkle.BuildTree("sha256", leaves)
	require.NoError(t, err)
	storedDepth := tree.StoredDepth(4)
	row := tree.Row(storedDepth)
	require.Equal(t, mm.Hashes, row)

	for i, leaf := range leaves {
		proof, err := tree.GetProofByIndex(uint64(i), 4)
		require.NoError(t, err)
		ok, err := merkle.CheckMerkleTree("sha256", leaf, uint64(i), uint64(len(leaves)), 4, proof, row)
		require.NoError(t, err)
		assert.True(t, ok, "chunk %d", i)
	}
}

func TestRegenHashReproducesIdenticalResult(t *testing.T) {
	data := fragmentedAsset(3, 16)
	path := writeTempAsset(t, data)

	h := assertion.New("", "", nil)
	require.NoError(t, GenHash(h, path, "sha256", 4))
	firstMerkle := h.Merkle()

	require.NoError(t, RegenHash(h, 4))
	assert.Equal(t, firstMerkle, h.Merkle())
}

func TestRegenHashBeforeGenHashFails(t *testing.T) {
	h := assertion.New("", "", nil)
	err := RegenHash(h, 4)
	require.Error(t, err)
	assert.True(t, bmffhasherr.Is(err, bmffhasherr.KindBadParam))
}
