package generate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/merkle"
)

func writeDashFixture(t *testing.T, nSegments int) string {
	t.Helper()
	srcDir := t.TempDir()

	init := wholeFileAsset()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "init.mp4"), init, 0o644))

	for i := 0; i < nSegments; i++ {
		seg := fragmentedAsset(1, 24)
		name := filepath.Join(srcDir, segmentName(i))
		require.NoError(t, os.WriteFile(name, seg, 0o644))
	}
	return srcDir
}

func segmentName(i int) string {
	return "seg" + string(rune('0'+i)) + ".m4s"
}

func TestAddMerkleForMPDThenUpdateMPDHash(t *testing.T) {
	const n = 4
	srcDir := writeDashFixture(t, n)
	outDir := filepath.Join(t.TempDir(), "out")

	h := assertion.New("", "", nil)
	initPath, err := AddMerkleForMPD(h, "sha256", srcDir, outDir, 0, nil, 4)
	require.NoError(t, err)

	require.Len(t, h.Merkle(), 1)
	mm := h.Merkle()[0]
	assert.EqualValues(t, n, mm.Count)
	sizes := merkle.LayerSizes(uint64(n))
	wantRowSize := sizes[merkle.StoredDepthForCount(uint64(n), 4)]
	assert.Len(t, mm.Hashes, int(wantRowSize))
	for _, b := range mm.InitHash {
		assert.Zero(t, b, "init hash must start as an all-zero placeholder")
	}

	require.NoError(t, UpdateMPDHash(h, initPath, "sha256"))
	updated := h.Merkle()[0]
	assert.NotEqual(t, mm.InitHash, updated.InitHash)

	nonZero := false
	for _, b := range updated.InitHash {
		if b != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "update_mpd_hash must replace the zero placeholder")
}

func TestAddMerkleForMPDRejectsMissingSegments(t *testing.T) {
	srcDir := t.TempDir()
	init := wholeFileAsset()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "init.mp4"), init, 0o644))

	h := assertion.New("", "", nil)
	_, err := AddMerkleForMPD(h, "sha256", srcDir, filepath.Join(t.TempDir(), "out"), 0, nil, 4)
	require.Error(t, err)
}
