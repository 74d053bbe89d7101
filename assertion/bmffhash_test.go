package assertion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2pa-labs/bmffhash/assertion"
	"github.com/c2pa-labs/bmffhash/bmffcbor"
)

func newCodec(t *testing.T) bmffcbor.Codec {
	t.Helper()
	codec, err := bmffcbor.New()
	require.NoError(t, err)
	return codec
}

func TestRoundTripWholeFileHash(t *testing.T) {
	codec := newCodec(t)

	h := assertion.New("my-hash", "sha256", nil)
	length := uint32(16)
	rule := assertion.NewExclusionsMap("/moov/trak/mdia/minf/stbl/stco")
	rule.Length = &length
	h.AddExclusion(rule)
	h.SetHash([]byte{1, 2, 3, 4})

	data, err := h.Encode(codec)
	require.NoError(t, err)

	decoded, err := assertion.Decode(codec, data, 1)
	require.NoError(t, err)

	assert.Equal(t, h.Exclusions(), decoded.Exclusions())
	assert.Equal(t, h.Hash(), decoded.Hash())
	assert.Equal(t, *h.Alg(), *decoded.Alg())
	assert.Equal(t, *h.Name(), *decoded.Name())
	assert.Nil(t, decoded.URL())
}

func TestRoundTripMerkleAssertion(t *testing.T) {
	codec := newCodec(t)

	h := assertion.New("", "", nil)
	h.SetMerkle([]assertion.MerkleMap{{
		UniqueID: 1,
		LocalID:  0,
		Count:    4,
		InitHash: []byte{9, 9},
		Hashes:   [][]byte{{1}, {2}},
	}})

	data, err := h.Encode(codec)
	require.NoError(t, err)

	decoded, err := assertion.Decode(codec, data, 2)
	require.NoError(t, err)

	require.Len(t, decoded.Merkle(), 1)
	assert.Equal(t, h.Merkle()[0], decoded.Merkle()[0])
	assert.Nil(t, decoded.Hash())
	assert.Equal(t, 2, decoded.BmffVersion())
}

func TestEncodeOmitsAbsentOptionalFields(t *testing.T) {
	codec := newCodec(t)
	h := assertion.New("", "", nil)
	h.SetHash([]byte{1})

	data, err := h.Encode(codec)
	require.NoError(t, err)

	// A fresh decode must not manufacture alg/name/url/merkle values that
	// were never set.
	decoded, err := assertion.Decode(codec, data, 1)
	require.NoError(t, err)
	assert.Nil(t, decoded.Alg())
	assert.Nil(t, decoded.Name())
	assert.Nil(t, decoded.URL())
	assert.Nil(t, decoded.Merkle())
}

func TestEffectiveAlgPrecedence(t *testing.T) {
	withAlg := assertion.New("", "sha256", nil)
	hint := "sha384"
	assert.Equal(t, "sha256", withAlg.EffectiveAlg(&hint))

	noAlg := assertion.New("", "", nil)
	assert.Equal(t, "sha384", noAlg.EffectiveAlg(&hint))
	assert.Equal(t, assertion.DefaultAlg, noAlg.EffectiveAlg(nil))
}

func TestIsRemoteHash(t *testing.T) {
	url := "https://example.com/hash"
	remote := assertion.New("", "", &url)
	assert.True(t, remote.IsRemoteHash())

	local := assertion.New("", "", nil)
	assert.False(t, local.IsRemoteHash())
}
