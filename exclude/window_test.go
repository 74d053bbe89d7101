package exclude_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c2pa-labs/bmffhash/exclude"
)

func u64p(v uint64) *uint64 { return &v }

func TestWindowAddsBoundaryExclusions(t *testing.T) {
	w := exclude.Window(exclude.Resolved{}, 10, 20, 30)

	require := assert.New(t)
	require.Equal([]exclude.HashRange{
		{Offset: 0, Length: 10},
		{Offset: 20, Length: 10},
	}, w.Ranges)
}

func TestWindowClipsGlobalRangesToWindow(t *testing.T) {
	global := exclude.Resolved{
		Ranges:     []exclude.HashRange{{Offset: 12, Length: 3}, {Offset: 25, Length: 2}},
		BoxOffsets: []*uint64{u64p(12), nil},
	}

	w := exclude.Window(global, 10, 20, 30)

	// The range at 12..15 is inside [10,20) and survives; the one at
	// 25..27 is outside the window and is dropped, alongside the two
	// synthetic boundary exclusions.
	assert.Equal(t, []exclude.HashRange{
		{Offset: 0, Length: 10},
		{Offset: 12, Length: 3},
		{Offset: 20, Length: 10},
	}, w.Ranges)
	assert.Nil(t, w.BoxOffsets[0])
	assert.NotNil(t, w.BoxOffsets[1])
	assert.Equal(t, uint64(12), *w.BoxOffsets[1])
}

func TestWindowCoveringWholeFileHasNoBoundaryExclusions(t *testing.T) {
	w := exclude.Window(exclude.Resolved{}, 0, 30, 30)
	assert.Empty(t, w.Ranges)
}
