package bulk

import "errors"

// ErrRead wraps failures reading the import stream itself.
var ErrRead = errors.New("read import file")
