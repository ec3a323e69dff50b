package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/models"
)

type CreateUserParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	MiddleName   *string
	PasswordHash string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same email or username exists has to return *apperrors.ConflictError with the colliding fields
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by it's id, username or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Delete user with all its refresh tokens
	// If user not found must return apperrors.ErrUserNotFound
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken repository interface
// Tokens stored as hashes, so there is no lookup by token value
type RefreshTokenRepo interface {
	// Save token record
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// List all user tokens, oldest first
	// Returns empty slice if user has no tokens
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error)

	// Delete token record by id
	// If token not found must return apperrors.ErrRefreshTokenNotFound
	Delete(ctx context.Context, tokenID uuid.UUID) error

	// Delete user tokens created strictly before the given time
	// Returns number of deleted records
	DeleteCreatedBefore(ctx context.Context, userID uuid.UUID, before time.Time) (int64, error)
}

// Credential store
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo

	// Check the store is reachable
	Ping(ctx context.Context) error
}
