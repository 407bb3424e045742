package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrStore marks a failed call to the database itself.
	ErrStore = errors.New("storage unavailable")
)

// StoreError wraps a database failure under ErrStore, naming the operation.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
