package verify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/generate"
	"github.com/c2pa-labs/bmffhash/verify"
)

func writeDashFixture(t *testing.T, nSegments int) string {
	t.Helper()
	srcDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "init.mp4"), wholeFileAsset(), 0o644))
	for i := 0; i < nSegments; i++ {
		name := filepath.Join(srcDir, segmentName(i))
		require.NoError(t, os.WriteFile(name, fragmentedAsset(1, 24), 0o644))
	}
	return srcDir
}

func segmentName(i int) string {
	return "seg" + string(rune('0'+i)) + ".m4s"
}

func TestVerifyStreamSegmentRoundTrip(t *testing.T) {
	const n = 3
	srcDir := writeDashFixture(t, n)
	outDir := filepath.Join(t.TempDir(), "out")

	h := assertion.New("", "", nil)
	initPath, err := generate.AddMerkleForMPD(h, "sha256", srcDir, outDir, 0, nil, 4)
	require.NoError(t, err)
	require.NoError(t, generate.UpdateMPDHash(h, initPath, "sha256"))

	initFile, err := os.Open(initPath)
	require.NoError(t, err)
	defer initFile.Close()

	segFile, err := os.Open(filepath.Join(outDir, segmentName(0)))
	require.NoError(t, err)
	defer segFile.Close()

	require.NoError(t, verify.VerifyStreamSegment(h, initFile, segFile, nil))
}

func TestVerifyStreamSegmentInitOnly(t *testing.T) {
	const n = 2
	srcDir := writeDashFixture(t, n)
	outDir := filepath.Join(t.TempDir(), "out")

	h := assertion.New("", "", nil)
	initPath, err := generate.AddMerkleForMPD(h, "sha256", srcDir, outDir, 0, nil, 4)
	require.NoError(t, err)
	require.NoError(t, generate.UpdateMPDHash(h, initPath, "sha256"))

	initFile, err := os.Open(initPath)
	require.NoError(t, err)
	defer initFile.Close()

	require.NoError(t, verify.VerifyStreamSegment(h, initFile, nil, nil))
}

func TestVerifyStreamSegmentDetectsTamperedSegment(t *testing.T) {
	const n = 3
	srcDir := writeDashFixture(t, n)
	outDir := filepath.Join(t.TempDir(), "out")

	h := assertion.New("", "", nil)
	initPath, err := generate.AddMerkleForMPD(h, "sha256", srcDir, outDir, 0, nil, 4)
	require.NoError(t, err)
	require.NoError(t, generate.UpdateMPDHash(h, initPath, "sha256"))

	segPath := filepath.Join(outDir, segmentName(1))
	data, err := os.ReadFile(segPath)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(segPath, data, 0o644))

	initFile, err := os.Open(initPath)
	require.NoError(t, err)
	defer initFile.Close()
	segFile, err := os.Open(segPath)
	require.NoError(t, err)
	defer segFile.Close()

	err = verify.VerifyStreamSegment(h, initFile, segFile, nil)
	require.Error(t, err)
	assert.True(t, bmffhasherr.Is(err, bmffhasherr.KindHashMismatch))
}

func TestVerifyStreamSegmentDetectsStaleInitHash(t *testing.T) {
	const n = 2
	srcDir := writeDashFixture(t, n)
	outDir := filepath.Join(t.TempDir(), "out")

	h := assertion.New("", "", nil)
	initPath, err := generate.AddMerkleForMPD(h, "sha256", srcDir, outDir, 0, nil, 4)
	require.NoError(t, err)
	// Intentionally skip UpdateMPDHash: InitHash is still the zero placeholder.

	initFile, err := os.Open(initPath)
	require.NoError(t, err)
	defer initFile.Close()

	err = verify.VerifyStreamSegment(h, initFile, nil, nil)
	require.Error(t, err)
	assert.True(t, bmffhasherr.Is(err, bmffhasherr.KindHashMismatch))
}
