package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/ekiden/internal/domain/model"
)

// JWTManager issues and checks session tokens.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// Claims are the custom JWT claims of a member session.
type Claims struct {
	MemberID string `json:"member_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a manager signing with secretKey. Tokens stay valid
// for tokenDuration.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// TokenDuration returns how long issued tokens remain valid.
func (m *JWTManager) TokenDuration() time.Duration { return m.tokenDuration }

// Generate creates a signed token for member.
func (m *JWTManager) Generate(member *model.Member) (string, error) {
	if member == nil || member.ID == "" {
		return "", errors.New("member id required")
	}
	now := m.now()
	claims := &Claims{
		MemberID: member.ID,
		Email:    member.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims when the signature and
// time window hold.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
