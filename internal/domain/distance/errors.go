package distance

import "errors"

// ErrUnknownBucket is returned by Parse for unrecognized bucket names.
var ErrUnknownBucket = errors.New("unknown distance bucket")
