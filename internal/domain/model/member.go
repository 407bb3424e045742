package model

import (
	"time"

	"github.com/google/uuid"
)

// Member is a club account.
type Member struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewMember builds a member with a fresh id and timestamps.
func NewMember(email, displayName, passwordHash string) *Member {
	now := time.Now().UTC()
	return &Member{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Profile holds the optional details a member shows on leaderboards.
// A member without a stored profile reads as the zero Profile.
type Profile struct {
	MemberID  string `json:"member_id"`
	Name      string `json:"name" validate:"max=100"`
	Gender    Gender `json:"gender" validate:"omitempty,oneof=male female"`
	BirthYear int    `json:"birth_year" validate:"omitempty,gte=1900,lte=2100"`
}

// Validate checks the profile fields.
func (p Profile) Validate() error {
	return Validate(p)
}
