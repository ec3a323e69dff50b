package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/handlers/render"
	"github.com/nkiryanov/gopherauth/internal/handlers/userctx"
)

type authenticator interface {
	// Get user id from request or error if request is not authenticated
	Authenticate(r *http.Request) (uuid.UUID, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Allow request only if it is authenticated, user id is put to request context
func AuthMiddleware(a authenticator, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				render.Error(w, err, l)
				return
			}

			ctx := userctx.New(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
