// Package verify implements the read side of the BMFF-based hash
// assertion: replaying a generator's committed digest or Merkle proof
// against an asset's current bytes. It composes bmffbox, exclude,
// hashutil, and merkle exactly as the generate package does, and
// deliberately does not import it, so the two stay siblings rather than
// forming a layered dependency.
package verify

import (
	"errors"

	"go.uber.org/zap"

	"github.com/c2pa-labs/bmffhash/bmffhasherr"
	"github.com/c2pa-labs/bmffhash/hashutil"
)

var log = zap.NewNop().Sugar()

// SetLogger installs l as this package's ambient logger. Nil-safe callers
// should pass a real *zap.SugaredLogger; the zero value here is a no-op
// sink so tests never need to configure one.
func SetLogger(l *zap.SugaredLogger) { log = l }

// wrapHashErr turns a hashutil.StreamHash failure into the error kind
// spec §4.8's failure table calls for: an unrecognized alg is a
// HashMismatch("no algorithm found"), since NewHash rejects it before any
// I/O occurs; everything else is a genuine KindIO failure.
func wrapHashErr(err error, format string, args ...any) error {
	if errors.Is(err, hashutil.ErrUnsupportedAlgorithm) {
		return bmffhasherr.HashMismatch("no algorithm found")
	}
	return bmffhasherr.Wrap(bmffhasherr.KindIO, err, format, args...)
}
