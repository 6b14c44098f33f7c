package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed, mis-signed and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned for a token whose id was revoked at logout.
	ErrTokenRevoked = errors.New("token revoked")
)

// revocations of non-expiring tokens are kept this long
const openEndedRevocationTTL = 30 * 24 * time.Hour

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret  []byte
	expiry  time.Duration
	revoker TokenRevoker
}

// NewTokenManager builds a TokenManager. An expiry of zero issues tokens
// without an exp claim. revoker may be nil.
func NewTokenManager(secret string, expiry time.Duration, revoker TokenRevoker) *TokenManager {
	return &TokenManager{
		secret:  []byte(secret),
		expiry:  expiry,
		revoker: revoker,
	}
}

// Issue signs a token for user
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.expiry))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns its claims. Any signature, algorithm,
// format or expiry problem yields ErrInvalidToken.
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke invalidates the token described by claims until it would have expired.
func (m *TokenManager) Revoke(ctx context.Context, claims *models.JwtCustomClaims) error {
	if m.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := openEndedRevocationTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return m.revoker.Revoke(ctx, claims.ID, ttl)
}
