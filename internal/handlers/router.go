package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkiryanov/gopherauth/internal/handlers/middleware"
	"github.com/nkiryanov/gopherauth/internal/logger"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Metrics are registered in registry and exposed on /metrics
func NewRouter(
	authService authService,
	pinger pinger,
	registry *prometheus.Registry,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService, logger)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /auth/register", handleRegister(authService, logger))
	mux.Handle("POST /auth/login", handleLogin(authService, logger))
	mux.Handle("POST /auth/refresh", handleRefresh(authService, logger))
	mux.Handle("POST /auth/logout", withAuth(handleLogout(authService, logger)))
	mux.Handle("GET /auth/me", withAuth(handleMe(authService, logger)))

	mux.Handle("GET /healthz", handleHealth(pinger, logger))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return wrap(mux, middleware.NewMetrics(registry), logger)
}

// Recovery is the innermost so the 500 it writes is logged and counted
func wrap(mux http.Handler, metrics *middleware.Metrics, logger logger.Logger) http.Handler {
	return chain(mux,
		middleware.LoggerMiddleware(logger),
		metrics.Middleware,
		middleware.Recovery(logger),
	)
}

type authService interface {
	// Register user
	// Has to return *apperrors.ConflictError if email or username is taken
	Register(ctx context.Context, params user.CreateParams) (models.User, error)

	// Login user with email or username and password
	// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
	Login(ctx context.Context, creds user.Credentials) (models.User, models.TokenPair, error)

	// Issue new access token using refresh token
	// Has to return apperrors.ErrInvalidCredentials if refresh token is not valid
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Revoke session the refresh token belongs to
	Logout(ctx context.Context, userID uuid.UUID, refresh string) error

	// Get authenticated user
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)

	// Get user id from request or error if request is not authenticated
	Authenticate(r *http.Request) (uuid.UUID, error)

	// Set auth tokens (access, refresh) to response
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)

	// Set access token to response
	SetAccessToResponse(w http.ResponseWriter, access models.IssuedToken)

	// Remove auth tokens from client
	ClearTokens(w http.ResponseWriter)

	// Get refresh token from request
	GetRefreshString(r *http.Request) (string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}
