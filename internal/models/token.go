package models

import (
	"time"

	"github.com/google/uuid"
)

// Stored refresh token record
// Only hash of the token is persisted, raw token is known by the client only
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	CreatedAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager on login
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
