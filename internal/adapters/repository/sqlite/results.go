package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
)

const insertResult = `
	INSERT INTO results (id, user_id, time_ms, distance, race_name, race_type, date, comment, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateResult stores one result for ownerID and returns it as read back.
func (s *Store) CreateResult(ctx context.Context, ownerID string, in model.ResultInput) (r model.RaceResult, err error) {
	const op = "create_result"
	defer func(start time.Time) { s.observeWrite(op, start, err) }(time.Now())

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, insertResult,
		id, ownerID, in.DurationMs, in.DistanceKm, in.RaceName, string(in.Category), in.EventDate, in.Note, toUnixMilli(s.now()),
	)
	if err != nil {
		return model.RaceResult{}, s.ownerError(ctx, op, ownerID, err)
	}
	return getResult(ctx, s.db, op, ownerID, id)
}

// CreateResults stores every input in a single transaction.
func (s *Store) CreateResults(ctx context.Context, ownerID string, ins []model.ResultInput) (n int, err error) {
	const op = "create_results"
	defer func(start time.Time) { s.observeWrite(op, start, err) }(time.Now())

	if len(ins) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, repository.StoreError(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertResult)
	if err != nil {
		return 0, repository.StoreError(op, err)
	}
	defer stmt.Close()

	created := toUnixMilli(s.now())
	for _, in := range ins {
		_, err = stmt.ExecContext(ctx,
			uuid.New().String(), ownerID, in.DurationMs, in.DistanceKm, in.RaceName, string(in.Category), in.EventDate, in.Note, created,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, s.ownerError(ctx, op, ownerID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, repository.StoreError(op, err)
	}
	return len(ins), nil
}

// GetResult reads one of ownerID's results.
func (s *Store) GetResult(ctx context.Context, ownerID, id string) (r model.RaceResult, err error) {
	const op = "get_result"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())
	return getResult(ctx, s.db, op, ownerID, id)
}

// UpdateResult applies patch to one of ownerID's results.
func (s *Store) UpdateResult(ctx context.Context, ownerID, id string, patch model.ResultPatch) (r model.RaceResult, err error) {
	const op = "update_result"
	defer func(start time.Time) { s.observeWrite(op, start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RaceResult{}, repository.StoreError(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getResult(ctx, tx, op, ownerID, id)
	if err != nil {
		return model.RaceResult{}, err
	}
	next := patch.Apply(current)
	in := model.ResultInput{
		DurationMs: next.DurationMs,
		DistanceKm: next.DistanceKm,
		RaceName:   next.RaceName,
		Category:   next.Category,
		EventDate:  next.EventDate,
		Note:       next.Note,
	}
	if err = in.Validate(); err != nil {
		return model.RaceResult{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE results
		SET time_ms = ?, distance = ?, race_name = ?, race_type = ?, date = ?, comment = NULLIF(?, '')
		WHERE id = ? AND user_id = ?
	`, in.DurationMs, in.DistanceKm, in.RaceName, string(in.Category), in.EventDate, in.Note, id, ownerID)
	if err != nil {
		return model.RaceResult{}, repository.StoreError(op, err)
	}
	if err = tx.Commit(); err != nil {
		return model.RaceResult{}, repository.StoreError(op, err)
	}
	return next, nil
}

// DeleteResult removes one of ownerID's results.
func (s *Store) DeleteResult(ctx context.Context, ownerID, id string) (err error) {
	const op = "delete_result"
	defer func(start time.Time) { s.observeWrite(op, start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return repository.StoreError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repository.StoreError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("result %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// QueryResults reads rows from q.Source with the pushed-down filters.
// Rows come back newest first.
func (s *Store) QueryResults(ctx context.Context, q repository.ResultQuery) (out []model.RaceResult, err error) {
	const op = "query_results"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())

	if !knownSource(q.Source) {
		return nil, fmt.Errorf("%w: %q", view.ErrNoSource, q.Source)
	}
	where, args := buildFilters(q)
	query := "SELECT " + viewColumns + " FROM " + string(q.Source)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.StoreError(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, repository.StoreError(op, err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, repository.StoreError(op, err)
	}
	return out, nil
}

// CountResults returns the number of stored results.
func (s *Store) CountResults(ctx context.Context) (n int, err error) {
	const op = "count_results"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())

	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n); err != nil {
		return 0, repository.StoreError(op, err)
	}
	return n, nil
}

func buildFilters(q repository.ResultQuery) ([]string, []any) {
	var where []string
	var args []any
	if q.OwnerID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.Category != "" {
		where = append(where, "race_type = ?")
		args = append(args, string(q.Category))
	}
	if q.Gender != "" {
		where = append(where, "gender = ?")
		args = append(args, string(q.Gender))
	}
	if q.NameLike != "" {
		where = append(where, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.NameLike)+"%")
	}
	if q.RaceLike != "" {
		where = append(where, `race_name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.RaceLike)+"%")
	}
	if q.DateFrom != "" {
		where = append(where, "date >= ?")
		args = append(args, q.DateFrom)
	}
	if q.DateTo != "" {
		where = append(where, "date <= ?")
		args = append(args, q.DateTo)
	}
	return where, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func knownSource(src view.Source) bool {
	for _, d := range view.Sources() {
		if d.Name == src {
			return true
		}
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (model.RaceResult, error) {
	var (
		r        model.RaceResult
		gender   string
		category string
		created  int64
	)
	err := sc.Scan(&r.ID, &r.OwnerID, &r.DisplayName, &gender, &r.DurationMs, &r.DistanceKm,
		&r.RaceName, &category, &r.EventDate, &r.Note, &created)
	if err != nil {
		return model.RaceResult{}, err
	}
	r.Gender = model.Gender(gender)
	r.Category = model.Category(category)
	r.CreatedAt = fromUnixMilli(created)
	return r, nil
}

func getResult(ctx context.Context, q queryer, op, ownerID, id string) (model.RaceResult, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+viewColumns+" FROM public_record WHERE id = ? AND user_id = ?", id, ownerID)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RaceResult{}, fmt.Errorf("result %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return model.RaceResult{}, repository.StoreError(op, err)
	}
	return r, nil
}

// ownerError maps a foreign key failure on an unknown owner to ErrNotFound.
func (s *Store) ownerError(ctx context.Context, op, ownerID string, err error) error {
	var n int
	if qerr := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE id = ?", ownerID).Scan(&n); qerr == nil && n == 0 {
		return fmt.Errorf("member: %w", repository.ErrNotFound)
	}
	return repository.StoreError(op, err)
}
