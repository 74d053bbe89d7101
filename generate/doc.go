// Package generate implements the BMFF hash assertion's generator (spec
// §4.7): whole-file hashing, single-file fragmented Merkle hashing, and
// DASH multi-segment preparation via the reserve-then-back-patch sequence
// described there.
package generate

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// SetLogger installs l as the package's diagnostic logger. The default is
// a no-op logger, so callers that never call this pay nothing.
func SetLogger(l *zap.SugaredLogger) { log = l }
