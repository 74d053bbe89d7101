package uuidbox

import "errors"

// ErrSizeMismatch is returned by BackPatch when the re-encoded payload does
// not occupy exactly the same number of bytes as the placeholder it is
// replacing.
var ErrSizeMismatch = errors.New("backpatched merkle payload changed size")
