package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/nkiryanov/gopherauth/internal/handlers/render"
)

// Turn panic into 500 response with the same body as any other internal error
// http.ErrAbortHandler is passed through, net/http handles it itself
func Recovery(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				l.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
