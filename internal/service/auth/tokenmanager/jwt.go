package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/models"
)

// Payload of both access and refresh tokens
// Tokens of different kinds signed with different keys, so one can't be used instead of another
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"userId"`
}

// Sign token for user with given key and lifetime
func (m *TokenManager) issue(key []byte, ttl time.Duration, userID uuid.UUID, now time.Time) (models.IssuedToken, error) {
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				// Random jti makes tokens issued in the same second for the same user different
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
		},
	)

	value, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Parse and validate token signed with the key: signature, algorithm and expiration
func (m *TokenManager) parse(key []byte, value string) (uuid.UUID, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		value,
		claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	if claims.UserID == uuid.Nil {
		return uuid.Nil, errors.New("token has no user")
	}

	return claims.UserID, nil
}

// Issue short living access token
func (m *TokenManager) IssueAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return m.issue(m.accessKey, m.accessTTL, userID, m.clock())
}

// Parse and validate access token
func (m *TokenManager) ParseAccess(access string) (uuid.UUID, error) {
	return m.parse(m.accessKey, access)
}

// Parse and validate refresh token
// It checks signature and expiration only, whether the token is revoked is known by UseRefresh
func (m *TokenManager) ParseRefresh(refresh string) (uuid.UUID, error) {
	return m.parse(m.refreshKey, refresh)
}

// Current time truncated to seconds as JWT dates are
func (m *TokenManager) clock() time.Time {
	return m.now().Truncate(time.Second)
}
