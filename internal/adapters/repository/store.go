// Package repository defines the persistence contract for members, profiles
// and race results, plus its error kinds.
package repository

import (
	"context"

	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
)

// ResultQuery narrows a read from one leaderboard source. Empty fields do
// not filter.
type ResultQuery struct {
	Source   view.Source
	OwnerID  string
	Category model.Category
	Gender   model.Gender
	// NameLike and RaceLike are substring matches that fold ASCII case only.
	NameLike string
	RaceLike string
	// DateFrom and DateTo are inclusive YYYY-MM-DD bounds.
	DateFrom string
	DateTo   string
}

// QueryFromSpec pushes every filter of spec that storage evaluates the same
// way as the engine. Name and race matching folds Unicode case, so it stays
// in the engine.
func QueryFromSpec(spec view.Spec) (ResultQuery, error) {
	src, err := spec.Source()
	if err != nil {
		return ResultQuery{}, err
	}
	return ResultQuery{
		Source:   src,
		Category: spec.Category,
		Gender:   spec.Gender,
		DateFrom: spec.DateFrom,
		DateTo:   spec.DateTo,
	}, nil
}

// MemberStore persists accounts and profiles.
type MemberStore interface {
	// CreateMember returns ErrConflict when the email is taken.
	CreateMember(ctx context.Context, m *model.Member) error
	// GetMemberByEmail and GetMemberByID return ErrNotFound for unknown members.
	GetMemberByEmail(ctx context.Context, email string) (*model.Member, error)
	GetMemberByID(ctx context.Context, id string) (*model.Member, error)
	// GetProfile returns ErrNotFound when the member never saved a profile.
	GetProfile(ctx context.Context, memberID string) (model.Profile, error)
	UpsertProfile(ctx context.Context, p model.Profile) error
	CountMembers(ctx context.Context) (int, error)
}

// ResultStore persists race results. Writes are scoped to the owner; a
// result owned by someone else reads as ErrNotFound.
type ResultStore interface {
	CreateResult(ctx context.Context, ownerID string, in model.ResultInput) (model.RaceResult, error)
	// CreateResults inserts every input in one transaction.
	CreateResults(ctx context.Context, ownerID string, ins []model.ResultInput) (int, error)
	GetResult(ctx context.Context, ownerID, id string) (model.RaceResult, error)
	UpdateResult(ctx context.Context, ownerID, id string, patch model.ResultPatch) (model.RaceResult, error)
	DeleteResult(ctx context.Context, ownerID, id string) error
	QueryResults(ctx context.Context, q ResultQuery) ([]model.RaceResult, error)
	CountResults(ctx context.Context) (int, error)
}

// Store is the full persistence contract.
type Store interface {
	MemberStore
	ResultStore
	Close() error
}
