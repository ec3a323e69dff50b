package handlers

import (
	"net/http"

	"github.com/nkiryanov/gopherauth/internal/handlers/render"
	"github.com/nkiryanov/gopherauth/internal/logger"
)

func handleHealth(pinger pinger, logger logger.Logger) http.Handler {
	type response struct {
		OK bool `json:"ok"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			logger.Warn("storage is not reachable", "error", err)
			render.JSONWithStatus(w, response{OK: false}, http.StatusServiceUnavailable)
			return
		}

		render.JSON(w, response{OK: true})
	})
}
