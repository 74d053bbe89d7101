package bmffcbor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2pa-labs/bmffhash/bmffcbor"
)

type sample struct {
	A uint32 `cbor:"a"`
	B string `cbor:"b"`
}

func TestCodecRoundTrip(t *testing.T) {
	codec, err := bmffcbor.New()
	require.NoError(t, err)

	in := sample{A: 7, B: "hello"}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodecDeterministicEncoding(t *testing.T) {
	codec, err := bmffcbor.New()
	require.NoError(t, err)

	in := sample{A: 1, B: "x"}
	first, err := codec.Marshal(in)
	require.NoError(t, err)
	second, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCodecRejectsDuplicateMapKeys(t *testing.T) {
	codec, err := bmffcbor.New()
	require.NoError(t, err)

	// Manually built CBOR map {"a": 1, "a": 2} (map of length 2, two text
	// keys "a", two uint values).
	data := []byte{
		0xa2,                   // map(2)
		0x61, 'a', 0x01,        // "a": 1
		0x61, 'a', 0x02,        // "a": 2
	}

	var out sample
	err = codec.Unmarshal(data, &out)
	assert.Error(t, err)
}
