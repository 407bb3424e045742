// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/auth"
	"github.com/okian/ekiden/internal/domain/dedupe"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

const (
	defaultDedupeSize   = 50000
	defaultLatestWindow = 30 * 24 * time.Hour
)

// Service implements the API dependencies for the race records system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	authn   auth.Authenticator
	tokens  *auth.JWTManager
	deduper dedupe.Deduper

	// Configuration
	dedupeSize   int
	latestWindow time.Duration
	now          func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. It is required.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithAuthenticator replaces the default password authenticator.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Service) {
		s.authn = a
	}
}

// WithJWTManager sets the session token issuer. It is required.
func WithJWTManager(m *auth.JWTManager) Option {
	return func(s *Service) {
		s.tokens = m
	}
}

// WithDedupeSize sets the size of the idempotency key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLatestWindow sets how far back the latest results page reaches.
func WithLatestWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.latestWindow = d
		}
	}
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize:   defaultDedupeSize,
		latestWindow: defaultLatestWindow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start checks the wiring and initializes the in-process components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.tokens == nil {
		return ErrNoTokenIssuer
	}

	s.logger.Info(ctx, "starting records service...")

	if s.authn == nil {
		s.authn = auth.NewPasswordAuthenticator(s.store)
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	s.started = true
	s.logger.Info(ctx, "records service started",
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("latestWindow", s.latestWindow.String()),
	)
	return nil
}

// Stop closes the store and marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping records service...")
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "records service stopped")
}

// ready returns ErrNotStarted until Start succeeded.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SeenAndRecord atomically checks if a submission key was seen and records
// it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordDuplicateSubmission()
	}
	return seen
}

// Unrecord forgets a submission key so the client can retry.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"dedupeSize":   s.dedupeSize,
		"latestWindow": s.latestWindow.String(),
	}

	if s.started {
		stats["dedupeKeys"] = s.deduper.Size()
		if members, err := s.store.CountMembers(ctx); err == nil {
			stats["totalMembers"] = members
			metrics.UpdateMembersTotal(members)
		} else {
			s.logger.Warn(ctx, "failed to count members", logger.Error(err))
		}
		if results, err := s.store.CountResults(ctx); err == nil {
			stats["totalResults"] = results
			metrics.UpdateResultsTotal(results)
		} else {
			s.logger.Warn(ctx, "failed to count results", logger.Error(err))
		}
	}
	return stats
}

// Size returns the current number of keys in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

func (s *Service) today() string {
	return s.now().Format(model.DateLayout)
}
