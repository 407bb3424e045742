package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/auth"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

// Registration is a sign-up request.
type Registration struct {
	Email       string
	DisplayName string
	Password    string
	InviteCode  string
}

// Session is a signed-in member and their bearer token.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Member    *model.Member `json:"member"`
}

// ProfileInput is the editable part of a profile.
type ProfileInput struct {
	Name      string
	Gender    string
	BirthYear int
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, reg Registration) (Session, error) {
	if err := s.ready(); err != nil {
		return Session{}, err
	}
	member, err := s.authn.Register(ctx, reg.Email, reg.DisplayName, reg.Password, reg.InviteCode)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInvite) {
			metrics.RecordAuthFailure("invite")
		}
		return Session{}, err
	}
	s.logger.Info(ctx, "member registered", logger.String("member_id", member.ID))
	return s.session(member)
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if err := s.ready(); err != nil {
		return Session{}, err
	}
	member, err := s.authn.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.RecordAuthFailure("credentials")
		}
		return Session{}, err
	}
	return s.session(member)
}

func (s *Service) session(member *model.Member) (Session, error) {
	token, err := s.tokens.Generate(member)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TokenDuration()).UTC(),
		Member:    member,
	}, nil
}

// ValidateToken returns the claims of a bearer token.
func (s *Service) ValidateToken(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		metrics.RecordAuthFailure("token")
		return nil, err
	}
	return claims, nil
}

// Profile returns the member's profile. A member who never saved one gets
// an empty profile.
func (s *Service) Profile(ctx context.Context, memberID string) (model.Profile, error) {
	if err := s.ready(); err != nil {
		return model.Profile{}, err
	}
	p, err := s.store.GetProfile(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{MemberID: memberID}, nil
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// UpdateProfile validates and stores the member's profile.
func (s *Service) UpdateProfile(ctx context.Context, memberID string, in ProfileInput) (model.Profile, error) {
	if err := s.ready(); err != nil {
		return model.Profile{}, err
	}
	gender, err := model.ParseGender(in.Gender)
	if err != nil {
		return model.Profile{}, err
	}
	p := model.Profile{
		MemberID:  memberID,
		Name:      in.Name,
		Gender:    gender,
		BirthYear: in.BirthYear,
	}
	if err := p.Validate(); err != nil {
		return model.Profile{}, err
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}
