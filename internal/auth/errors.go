package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authorization token required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidInvite      = errors.New("invalid invite code")
)
