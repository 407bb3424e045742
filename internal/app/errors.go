package service

import "errors"

var (
	ErrNotStarted    = errors.New("service not started")
	ErrNoStore       = errors.New("service: store is required")
	ErrNoTokenIssuer = errors.New("service: token issuer is required")
)
