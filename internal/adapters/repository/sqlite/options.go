package sqlite

import (
	"time"

	"github.com/okian/ekiden/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the logger used for startup and failure messages.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
