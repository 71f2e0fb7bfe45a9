package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskly/task-tracker/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

type tokenClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for identity that expires after the configured TTL.
// Every token gets a unique jti, so a refresh inside the same second still
// yields a distinct token.
func (s *TokenService) Issue(identity domain.Identity) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. The returned error wraps
// ErrTokenExpired, ErrTokenMalformed or ErrInvalidToken so callers can log
// the cause; all three wrap domain.ErrUnauthorized.
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims tokenClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Identity{}, fmt.Errorf("verify token: %w", domain.ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.Identity{}, fmt.Errorf("verify token: %w", domain.ErrTokenMalformed)
	default:
		return domain.Identity{}, fmt.Errorf("verify token: %w (%v)", domain.ErrInvalidToken, err)
	}

	if claims.UserID <= 0 {
		return domain.Identity{}, fmt.Errorf("verify token: %w (missing user id)", domain.ErrInvalidToken)
	}
	return domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
