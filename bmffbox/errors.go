package bmffbox

import "errors"

// ErrMalformedHeader is returned by Scan when a box header is truncated,
// declares a size shorter than its own header, or declares a size that
// would read past the end of the stream.
var ErrMalformedHeader = errors.New("malformed ISOBMFF box header")
