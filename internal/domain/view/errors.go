package view

import "errors"

// Sentinel kinds for view errors.
var (
	ErrUnknownMode    = errors.New("unknown aggregation mode")
	ErrUnknownSortKey = errors.New("unknown sort key")
	ErrNoSource       = errors.New("no data source for view")
)
