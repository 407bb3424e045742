package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/domain/model"
)

// CreateMember inserts a new member. A taken email yields ErrConflict.
func (s *Store) CreateMember(ctx context.Context, m *model.Member) (err error) {
	const op = "create_member"
	defer func(start time.Time) { s.observeWrite(op, start, err) }(time.Now())

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now().UTC()
		m.UpdatedAt = m.CreatedAt
	}

	query := `
		INSERT INTO members (id, email, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		m.ID,
		m.Email,
		m.DisplayName,
		m.PasswordHash,
		toUnixMilli(m.CreatedAt),
		toUnixMilli(m.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %s: %w", m.Email, repository.ErrConflict)
	}
	if err != nil {
		return repository.StoreError(op, err)
	}
	return nil
}

// GetMemberByEmail retrieves a member by email, case-insensitively.
func (s *Store) GetMemberByEmail(ctx context.Context, email string) (m *model.Member, err error) {
	const op = "get_member_by_email"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())
	return s.getMember(ctx, op, "email = ?", email)
}

// GetMemberByID retrieves a member by id.
func (s *Store) GetMemberByID(ctx context.Context, id string) (m *model.Member, err error) {
	const op = "get_member_by_id"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())
	return s.getMember(ctx, op, "id = ?", id)
}

func (s *Store) getMember(ctx context.Context, op, where string, arg any) (*model.Member, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM members
		WHERE ` + where

	m := &model.Member{}
	var created, updated int64
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&m.ID,
		&m.Email,
		&m.DisplayName,
		&m.PasswordHash,
		&created,
		&updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, repository.StoreError(op, err)
	}
	m.CreatedAt = fromUnixMilli(created)
	m.UpdatedAt = fromUnixMilli(updated)
	return m, nil
}

// GetProfile returns the stored profile or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, memberID string) (p model.Profile, err error) {
	const op = "get_profile"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())

	var gender string
	err = s.db.QueryRowContext(ctx,
		"SELECT member_id, name, gender, birth_year FROM profiles WHERE member_id = ?",
		memberID,
	).Scan(&p.MemberID, &p.Name, &gender, &p.BirthYear)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("profile: %w", repository.ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, repository.StoreError(op, err)
	}
	p.Gender = model.Gender(gender)
	return p, nil
}

// UpsertProfile inserts or replaces the profile keyed by member id.
func (s *Store) UpsertProfile(ctx context.Context, p model.Profile) (err error) {
	const op = "upsert_profile"
	defer func(start time.Time) { s.observeWrite(op, start, err) }(time.Now())

	query := `
		INSERT INTO profiles (member_id, name, gender, birth_year)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id) DO UPDATE SET
			name = excluded.name,
			gender = excluded.gender,
			birth_year = excluded.birth_year
	`
	if _, err = s.db.ExecContext(ctx, query, p.MemberID, p.Name, string(p.Gender), p.BirthYear); err != nil {
		// Unknown member trips the foreign key.
		var n int
		if qerr := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE id = ?", p.MemberID).Scan(&n); qerr == nil && n == 0 {
			return fmt.Errorf("member: %w", repository.ErrNotFound)
		}
		return repository.StoreError(op, err)
	}
	_, err = s.db.ExecContext(ctx, "UPDATE members SET updated_at = ? WHERE id = ?", toUnixMilli(s.now()), p.MemberID)
	if err != nil {
		return repository.StoreError(op, err)
	}
	return nil
}

// CountMembers returns the number of registered members.
func (s *Store) CountMembers(ctx context.Context) (n int, err error) {
	const op = "count_members"
	defer func(start time.Time) { s.observeRead(op, start, err) }(time.Now())

	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members").Scan(&n); err != nil {
		return 0, repository.StoreError(op, err)
	}
	return n, nil
}
