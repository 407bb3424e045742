package service

import (
	"context"
	"io"

	"github.com/okian/ekiden/internal/adapters/export"
	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
	"github.com/okian/ekiden/pkg/metrics"
)

// Leaderboard returns the public rows selected by spec, in display order.
func (s *Service) Leaderboard(ctx context.Context, spec view.Spec) ([]model.RaceResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	metrics.RecordLeaderboardQuery(spec.Bucket.String(), spec.Mode.String())
	return s.query(ctx, spec, "")
}

// MyResults returns memberID's own rows selected by spec.
func (s *Service) MyResults(ctx context.Context, memberID string, spec view.Spec) ([]model.RaceResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.query(ctx, spec, memberID)
}

// LatestResults returns every member's rows dated within the latest window.
// An explicit start date later than the window start is kept.
func (s *Service) LatestResults(ctx context.Context, spec view.Spec) ([]model.RaceResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	from := s.now().Add(-s.latestWindow).Format(model.DateLayout)
	if spec.DateFrom > from {
		from = spec.DateFrom
	}
	return s.query(ctx, spec.WithDateRange(from, spec.DateTo), "")
}

// ExportLeaderboard writes the rows of Leaderboard as a workbook to w.
func (s *Service) ExportLeaderboard(ctx context.Context, spec view.Spec, w io.Writer) error {
	rows, err := s.Leaderboard(ctx, spec)
	if err != nil {
		return err
	}
	return export.WriteLeaderboard(w, spec.Bucket.Label()+" "+spec.Mode.String(), rows)
}

// query reads the source of spec with every filter storage can evaluate,
// then runs the engine for best-per-member, ordering and limit.
func (s *Service) query(ctx context.Context, spec view.Spec, ownerID string) ([]model.RaceResult, error) {
	q, err := repository.QueryFromSpec(spec)
	if err != nil {
		return nil, err
	}
	q.OwnerID = ownerID
	rows, err := s.store.QueryResults(ctx, q)
	if err != nil {
		return nil, err
	}
	return view.Apply(rows, spec), nil
}
