package tokenmanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/repository"
	"github.com/nkiryanov/gopherauth/internal/service/hasher"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token manager with sensible default
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Required to be set and must differ
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Hasher to store refresh tokens
	// If not set than hasher.Default is used
	Hasher hasher.Hasher

	// Clock. If not set time.Now is used
	Now func() time.Time
}

type TokenManager struct {
	// Secret keys to sign tokens
	accessKey  []byte
	refreshKey []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration

	hasher hasher.Hasher
	now    func() time.Time

	// Refresh token repo
	refreshRepo repository.RefreshTokenRepo
}

func New(cfg Config, refreshRepo repository.RefreshTokenRepo) (*TokenManager, error) {
	switch {
	case cfg.AccessSecret == "" || cfg.RefreshSecret == "":
		return nil, errors.New("access and refresh secret keys must not be empty")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh secret keys must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.Hasher == nil {
		cfg.Hasher = hasher.Default
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		accessKey:   []byte(cfg.AccessSecret),
		refreshKey:  []byte(cfg.RefreshSecret),
		alg:         alg,
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		hasher:      cfg.Hasher,
		now:         cfg.Now,
		refreshRepo: refreshRepo,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Open new user session: issue token pair and save refresh token hash
// Other user sessions are kept
func (m *TokenManager) GeneratePair(ctx context.Context, userID uuid.UUID) (models.TokenPair, error) {
	var pair models.TokenPair
	now := m.clock()

	access, err := m.issue(m.accessKey, m.accessTTL, userID, now)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := m.issue(m.refreshKey, m.refreshTTL, userID, now)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	hash, err := m.hasher.Hash(refresh.Value)
	if err != nil {
		return pair, fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	_, err = m.refreshRepo.Save(ctx, models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hash,
		CreatedAt: now,
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Use refresh token to get new access token
//
// Token has to be valid JWT and has to match one of not expired user records.
// Expired user records are removed on the way. Refresh token itself is not rotated.
// Any failure caused by the token is apperrors.ErrInvalidCredentials
func (m *TokenManager) UseRefresh(ctx context.Context, refresh string) (uuid.UUID, models.IssuedToken, error) {
	userID, err := m.ParseRefresh(refresh)
	if err != nil {
		return uuid.Nil, models.IssuedToken{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	now := m.clock()

	_, err = m.refreshRepo.DeleteCreatedBefore(ctx, userID, now.Add(-m.refreshTTL))
	if err != nil {
		return uuid.Nil, models.IssuedToken{}, fmt.Errorf("error while deleting expired refresh tokens. Err: %w", err)
	}

	_, err = m.findRecord(ctx, userID, refresh)
	if err != nil {
		return uuid.Nil, models.IssuedToken{}, err
	}

	access, err := m.issue(m.accessKey, m.accessTTL, userID, now)
	if err != nil {
		return uuid.Nil, models.IssuedToken{}, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	return userID, access, nil
}

// Revoke user session the refresh token belongs to
// Other user sessions are kept. If nothing matches apperrors.ErrRefreshTokenNotFound returned
func (m *TokenManager) Revoke(ctx context.Context, userID uuid.UUID, refresh string) error {
	record, err := m.findRecord(ctx, userID, refresh)
	if err != nil {
		return err
	}

	err = m.refreshRepo.Delete(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("error while deleting refresh token. Err: %w", err)
	}

	return nil
}

// Find user record matching the refresh token
// Hashes are salted, so the only way is to compare with every user record
func (m *TokenManager) findRecord(ctx context.Context, userID uuid.UUID, refresh string) (models.RefreshToken, error) {
	records, err := m.refreshRepo.ListByUser(ctx, userID)
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("error while listing refresh tokens. Err: %w", err)
	}

	for _, record := range records {
		if m.hasher.Compare(record.TokenHash, refresh) == nil {
			return record, nil
		}
	}

	return models.RefreshToken{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, apperrors.ErrRefreshTokenNotFound)
}
