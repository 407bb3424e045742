package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/domain/model"
)

const minPasswordLength = 8

var _ Authenticator = (*PasswordAuthenticator)(nil)

// MemberStorage is the part of the member store the authenticator needs.
type MemberStorage interface {
	CreateMember(ctx context.Context, m *model.Member) error
	GetMemberByEmail(ctx context.Context, email string) (*model.Member, error)
}

// PasswordAuthenticator implements password sign-in backed by bcrypt.
type PasswordAuthenticator struct {
	storage    MemberStorage
	inviteCode string
	cost       int
}

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithInviteCode requires code at registration. Empty disables the check.
func WithInviteCode(code string) Option {
	return func(a *PasswordAuthenticator) {
		a.inviteCode = code
	}
}

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) Option {
	return func(a *PasswordAuthenticator) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			a.cost = cost
		}
	}
}

// NewPasswordAuthenticator creates an authenticator over storage.
func NewPasswordAuthenticator(storage MemberStorage, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateCredential enforces the minimum password length.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

type registration struct {
	Email       string `validate:"required,email,max=254"`
	DisplayName string `validate:"required,max=100"`
}

// Register creates a member with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential, invite string) (*model.Member, error) {
	if a.inviteCode != "" && subtle.ConstantTimeCompare([]byte(invite), []byte(a.inviteCode)) != 1 {
		return nil, ErrInvalidInvite
	}
	reg := registration{
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := model.Validate(reg); err != nil {
		return nil, err
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := model.NewMember(reg.Email, reg.DisplayName, string(hashed))
	if err := a.storage.CreateMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

// Authenticate verifies email and password.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*model.Member, error) {
	member, err := a.storage.GetMemberByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return member, nil
}
