package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/okian/ekiden/internal/domain/bulk"
	"github.com/okian/ekiden/internal/domain/dedupe"
	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

// Submission is a result as a member types it. Time is H:MM:SS[.F].
type Submission struct {
	Time     string
	Distance float64
	RaceName string
	RaceType string
	Date     string
	Comment  string
}

// Edit changes the set fields of an existing result.
type Edit struct {
	Time     *string
	Distance *float64
	RaceName *string
	RaceType *string
	Date     *string
	Comment  *string
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

// SubmitResult stores one result for memberID. A non-empty idempotencyKey
// that was already used by the member returns duplicate=true and stores
// nothing.
func (s *Service) SubmitResult(ctx context.Context, memberID, idempotencyKey string, sub Submission) (r model.RaceResult, duplicate bool, err error) {
	if err := s.ready(); err != nil {
		return model.RaceResult{}, false, err
	}
	in, err := s.toInput(sub)
	if err != nil {
		return model.RaceResult{}, false, err
	}

	var key string
	if idempotencyKey != "" {
		key = dedupe.Key(memberID, idempotencyKey)
		if s.SeenAndRecord(ctx, key) {
			s.logger.Debug(ctx, "duplicate submission, skipping",
				logger.String("member_id", memberID),
				logger.String("idempotency_key", idempotencyKey),
			)
			return model.RaceResult{}, true, nil
		}
	}

	r, err = s.store.CreateResult(ctx, memberID, in)
	if err != nil {
		if key != "" {
			s.Unrecord(ctx, key)
		}
		return model.RaceResult{}, false, err
	}
	metrics.RecordResultCreated(1)
	s.logger.Info(ctx, "result stored",
		logger.String("member_id", memberID),
		logger.String("record_id", r.ID),
	)
	return r, false, nil
}

func (s *Service) toInput(sub Submission) (model.ResultInput, error) {
	ms, err := s.parseTime(sub.Time)
	if err != nil {
		return model.ResultInput{}, err
	}
	cat, err := model.ParseCategory(sub.RaceType)
	if err != nil {
		return model.ResultInput{}, err
	}
	date := strings.TrimSpace(sub.Date)
	if date == "" {
		date = s.today()
	}
	in := model.ResultInput{
		DurationMs: ms,
		DistanceKm: sub.Distance,
		RaceName:   strings.TrimSpace(sub.RaceName),
		Category:   cat,
		EventDate:  date,
		Note:       strings.TrimSpace(sub.Comment),
	}
	if err := in.Validate(); err != nil {
		return model.ResultInput{}, err
	}
	return in, nil
}

func (s *Service) parseTime(v string) (int64, error) {
	ms, err := duration.Parse(strings.TrimSpace(v))
	if err != nil {
		metrics.RecordDurationParseFailure()
		return 0, err
	}
	return ms, nil
}

// ImportResults reads the bulk format from r and stores every valid row
// for memberID. Invalid rows are skipped and reported; valid rows are
// stored together or not at all.
func (s *Service) ImportResults(ctx context.Context, memberID string, r io.Reader) (ImportReport, error) {
	if err := s.ready(); err != nil {
		return ImportReport{}, err
	}
	batch, err := bulk.Parse(r, s.today())
	if err != nil {
		return ImportReport{}, err
	}

	inputs := make([]model.ResultInput, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		in, err := bulk.Convert(row)
		if err != nil {
			if errors.Is(err, duration.ErrFormat) {
				metrics.RecordDurationParseFailure()
			}
			batch.Skip(row.Line, err.Error())
			continue
		}
		inputs = append(inputs, in)
	}

	n, err := s.store.CreateResults(ctx, memberID, inputs)
	if err != nil {
		return ImportReport{}, err
	}

	metrics.RecordImportRows(n, batch.Skipped)
	if n > 0 {
		metrics.RecordResultCreated(n)
	}
	for _, w := range batch.Warnings {
		s.logger.Warn(ctx, "import row skipped",
			logger.String("member_id", memberID),
			logger.String("reason", w),
		)
	}
	s.logger.Info(ctx, "import finished",
		logger.String("member_id", memberID),
		logger.Int("imported", n),
		logger.Int("skipped", batch.Skipped),
	)

	warnings := batch.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return ImportReport{Imported: n, Skipped: batch.Skipped, Warnings: warnings}, nil
}

// UpdateResult applies edit to one of memberID's results.
func (s *Service) UpdateResult(ctx context.Context, memberID, id string, edit Edit) (model.RaceResult, error) {
	if err := s.ready(); err != nil {
		return model.RaceResult{}, err
	}
	patch, err := s.toPatch(edit)
	if err != nil {
		return model.RaceResult{}, err
	}
	r, err := s.store.UpdateResult(ctx, memberID, id, patch)
	if err != nil {
		return model.RaceResult{}, err
	}
	metrics.RecordResultUpdated()
	s.logger.Info(ctx, "result updated",
		logger.String("member_id", memberID),
		logger.String("record_id", id),
	)
	return r, nil
}

func (s *Service) toPatch(edit Edit) (model.ResultPatch, error) {
	var p model.ResultPatch
	if edit.Time != nil {
		ms, err := s.parseTime(*edit.Time)
		if err != nil {
			return model.ResultPatch{}, err
		}
		p.DurationMs = &ms
	}
	if edit.RaceType != nil {
		cat, err := model.ParseCategory(*edit.RaceType)
		if err != nil {
			return model.ResultPatch{}, err
		}
		p.Category = &cat
	}
	if edit.RaceName != nil {
		name := strings.TrimSpace(*edit.RaceName)
		p.RaceName = &name
	}
	if edit.Comment != nil {
		note := strings.TrimSpace(*edit.Comment)
		p.Note = &note
	}
	p.DistanceKm = edit.Distance
	p.EventDate = edit.Date
	if err := p.Validate(); err != nil {
		return model.ResultPatch{}, err
	}
	return p, nil
}

// DeleteResult removes one of memberID's results.
func (s *Service) DeleteResult(ctx context.Context, memberID, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.DeleteResult(ctx, memberID, id); err != nil {
		return err
	}
	metrics.RecordResultDeleted()
	s.logger.Info(ctx, "result deleted",
		logger.String("member_id", memberID),
		logger.String("record_id", id),
	)
	return nil
}
