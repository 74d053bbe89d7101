package bmffhasherr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c2pa-labs/bmffhash/bmffhasherr"
)

func TestIsMatchesKind(t *testing.T) {
	err := bmffhasherr.New(bmffhasherr.KindBadParam, "bad %s", "input")
	assert.True(t, bmffhasherr.Is(err, bmffhasherr.KindBadParam))
	assert.False(t, bmffhasherr.Is(err, bmffhasherr.KindIO))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := bmffhasherr.Wrap(bmffhasherr.KindIO, cause, "writing asset")
	assert.True(t, bmffhasherr.Is(err, bmffhasherr.KindIO))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "writing asset")
}

func TestHashMismatchConvenienceConstructor(t *testing.T) {
	err := bmffhasherr.HashMismatch("asset hash mismatch")
	assert.True(t, bmffhasherr.Is(err, bmffhasherr.KindHashMismatch))
	assert.Contains(t, err.Error(), "asset hash mismatch")
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	assert.False(t, bmffhasherr.Is(errors.New("plain"), bmffhasherr.KindBadParam))
}

func TestKindStringer(t *testing.T) {
	assert.Equal(t, "BadParam", bmffhasherr.KindBadParam.String())
	assert.Equal(t, "Io", bmffhasherr.KindIO.String())
}
