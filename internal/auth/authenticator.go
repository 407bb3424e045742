// Package auth registers and authenticates club members and issues the
// bearer tokens that protect member-only routes.
package auth

import (
	"context"

	"github.com/okian/ekiden/internal/domain/model"
)

// Authenticator registers members and checks their credentials.
type Authenticator interface {
	// Register creates an account. invite must match the club code when one
	// is configured.
	Register(ctx context.Context, email, displayName, credential, invite string) (*model.Member, error)

	// Authenticate returns the member owning email when credential matches.
	Authenticate(ctx context.Context, email, credential string) (*model.Member, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}
