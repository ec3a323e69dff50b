package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/gopherauth/internal/handlers/render"
	"github.com/nkiryanov/gopherauth/internal/handlers/userctx"
	"github.com/nkiryanov/gopherauth/internal/logger"
	"github.com/nkiryanov/gopherauth/internal/models"
)

// User as it is shown to the client: no id, no password hash
type userResponse struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	MiddleName *string   `json:"middleName"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MiddleName: u.MiddleName,
		CreatedAt:  u.CreatedAt,
	}
}

func handleMe(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		OK   bool         `json:"ok"`
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := userctx.FromContext(r.Context())

		u, err := authService.GetUser(r.Context(), userID)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, response{OK: true, User: newUserResponse(u)})
	})
}
