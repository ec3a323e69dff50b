package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/gopherauth/internal/service/user"
)

const (
	defaultAccessCookieName  = "access_token"
	defaultAccessCookiePath  = "/"
	defaultRefreshCookieName = "refresh_token"
	defaultRefreshCookiePath = "/auth"
)

// Cookies to transport tokens
// Empty fields are set to defaults
type Config struct {
	AccessCookieName  string
	AccessCookiePath  string
	RefreshCookieName string
	RefreshCookiePath string

	// Send cookies over https only
	Secure bool
}

type AuthService struct {
	accessCookieName  string
	accessCookiePath  string
	refreshCookieName string
	refreshCookiePath string
	secure            bool

	tokenManager *tokenmanager.TokenManager
	users        *user.UserService
}

func NewService(cfg Config, tokenManager *tokenmanager.TokenManager, users *user.UserService) (*AuthService, error) {
	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessCookieName, defaultAccessCookieName)
	setDefault(&cfg.AccessCookiePath, defaultAccessCookiePath)
	setDefault(&cfg.RefreshCookieName, defaultRefreshCookieName)
	setDefault(&cfg.RefreshCookiePath, defaultRefreshCookiePath)

	if cfg.AccessCookieName == cfg.RefreshCookieName {
		return nil, errors.New("access and refresh cookie names must differ")
	}
	for _, path := range []string{cfg.AccessCookiePath, cfg.RefreshCookiePath} {
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("cookie path %q must start with /", path)
		}
	}

	return &AuthService{
		accessCookieName:  cfg.AccessCookieName,
		accessCookiePath:  cfg.AccessCookiePath,
		refreshCookieName: cfg.RefreshCookieName,
		refreshCookiePath: cfg.RefreshCookiePath,
		secure:            cfg.Secure,
		tokenManager:      tokenManager,
		users:             users,
	}, nil
}

// Register new user
// If email or username is taken *apperrors.ConflictError returned
func (s *AuthService) Register(ctx context.Context, params user.CreateParams) (models.User, error) {
	return s.users.CreateUser(ctx, params)
}

// Login user and open new session
// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
func (s *AuthService) Login(ctx context.Context, creds user.Credentials) (models.User, models.TokenPair, error) {
	u, err := s.users.CheckCredentials(ctx, creds)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokenManager.GeneratePair(ctx, u.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return u, pair, nil
}

// Issue new access token with refresh token
// Any problem with the refresh token is apperrors.ErrInvalidCredentials
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	_, access, err := s.tokenManager.UseRefresh(ctx, refresh)
	return access, err
}

// Close user session the refresh token belongs to
// Missing or unknown refresh token is not an error: there is nothing to close
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refresh string) error {
	if refresh == "" {
		return nil
	}

	err := s.tokenManager.Revoke(ctx, userID, refresh)
	if err != nil && !errors.Is(err, apperrors.ErrRefreshTokenNotFound) {
		return err
	}

	return nil
}

// Get authenticated user
// User removed after the token was issued is apperrors.ErrInvalidCredentials
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return u, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}
	return u, err
}

// Get user id from request access token
func (s *AuthService) Authenticate(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(s.accessCookieName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: access token not found", apperrors.ErrInvalidCredentials)
	}

	userID, err := s.tokenManager.ParseAccess(cookie.Value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	return userID, nil
}

// Get refresh token from request
func (s *AuthService) GetRefreshString(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", fmt.Errorf("%w: refresh token not found", apperrors.ErrInvalidCredentials)
	}
	return cookie.Value, nil
}

// Set auth tokens (access, refresh) to response
func (s *AuthService) SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair) {
	s.SetAccessToResponse(w, pair.Access)
	http.SetCookie(w, s.cookie(s.refreshCookieName, s.refreshCookiePath, pair.Refresh.Value, s.tokenManager.RefreshTTL()))
}

// Set access token only, refresh cookie is kept by client
func (s *AuthService) SetAccessToResponse(w http.ResponseWriter, access models.IssuedToken) {
	http.SetCookie(w, s.cookie(s.accessCookieName, s.accessCookiePath, access.Value, s.tokenManager.AccessTTL()))
}

// Ask client to remove both auth cookies
func (s *AuthService) ClearTokens(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(s.accessCookieName, s.accessCookiePath, "", -1))
	http.SetCookie(w, s.cookie(s.refreshCookieName, s.refreshCookiePath, "", -1))
}

// Set auth tokens to request as client would do
// Useful in tests
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.AddCookie(&http.Cookie{Name: s.accessCookieName, Value: pair.Access.Value})
	r.AddCookie(&http.Cookie{Name: s.refreshCookieName, Value: pair.Refresh.Value})
}

// Negative ttl expires cookie immediately
func (s *AuthService) cookie(name string, path string, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
