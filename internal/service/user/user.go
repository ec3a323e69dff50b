package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/repository"
	"github.com/nkiryanov/gopherauth/internal/service/hasher"
)

// New user data as provided on registration
type CreateParams struct {
	Username   string
	Email      string
	FirstName  string
	LastName   string
	MiddleName *string
	Password   string
}

// Credentials to login with: email or username and password
// Email has higher priority if both set
type Credentials struct {
	Email    string
	Username string
	Password string
}

type UserService struct {
	hasher   hasher.Hasher
	userRepo repository.UserRepo
}

func NewService(h hasher.Hasher, userRepo repository.UserRepo) *UserService {
	if h == nil {
		h = hasher.Default
	}

	return &UserService{
		hasher:   h,
		userRepo: userRepo,
	}
}

// Create user with hashed password
// Email and names are stored lowercased
// If email or username is taken *apperrors.ConflictError returned
func (s *UserService) CreateUser(ctx context.Context, params CreateParams) (models.User, error) {
	var user models.User
	if params.Password == "" {
		return user, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	var middleName *string
	if params.MiddleName != nil {
		lowered := strings.ToLower(*params.MiddleName)
		middleName = &lowered
	}

	user, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Username:     params.Username,
		Email:        strings.ToLower(params.Email),
		FirstName:    strings.ToLower(params.FirstName),
		LastName:     strings.ToLower(params.LastName),
		MiddleName:   middleName,
		PasswordHash: hash,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, id)
}

// Find user by credentials and check password
// Unknown user and wrong password are indistinguishable: both are apperrors.ErrInvalidCredentials
func (s *UserService) CheckCredentials(ctx context.Context, creds Credentials) (models.User, error) {
	var (
		user models.User
		err  error
	)

	switch {
	case creds.Email != "":
		user, err = s.userRepo.GetUserByEmail(ctx, strings.ToLower(creds.Email))
	case creds.Username != "":
		user, err = s.userRepo.GetUserByUsername(ctx, creds.Username)
	default:
		return user, apperrors.ErrInvalidCredentials
	}

	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, creds.Password); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}
