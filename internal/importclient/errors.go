package importclient

import "errors"

var (
	ErrLogin    = errors.New("login failed")
	ErrImport   = errors.New("import failed")
	ErrList     = errors.New("listing results failed")
	ErrNoFile   = errors.New("no import file given")
	ErrMismatch = errors.New("stored results do not match the report")
)
