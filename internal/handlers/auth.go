package handlers

import (
	"net/http"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/handlers/render"
	"github.com/nkiryanov/gopherauth/internal/handlers/userctx"
	"github.com/nkiryanov/gopherauth/internal/logger"
	"github.com/nkiryanov/gopherauth/internal/service/user"
)

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func handleRegister(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Username   string  `json:"username" validate:"required,max=50"`
		Email      string  `json:"email" validate:"required,email"`
		FirstName  string  `json:"firstName" validate:"required"`
		LastName   string  `json:"lastName" validate:"required"`
		MiddleName *string `json:"middleName"`
		Password   string  `json:"password" validate:"required,min=8"`
	}
	type response struct {
		OK      bool         `json:"ok"`
		Message string       `json:"message"`
		User    userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		u, err := authService.Register(r.Context(), user.CreateParams{
			Username:   data.Username,
			Email:      data.Email,
			FirstName:  data.FirstName,
			LastName:   data.LastName,
			MiddleName: data.MiddleName,
			Password:   data.Password,
		})
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSONWithStatus(w, response{OK: true, Message: "Sign-up successful", User: newUserResponse(u)}, http.StatusCreated)
	})
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"omitempty,email"`
		Username string `json:"username"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		OK   bool         `json:"ok"`
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		// Exactly one identifier is allowed
		if (data.Email == "") == (data.Username == "") {
			render.Error(w, &apperrors.ValidationError{
				Message: "Request validation failed",
				Fields: map[string]string{
					"email":    "Provide either email or username",
					"username": "Provide either email or username",
				},
			}, logger)
			return
		}

		u, pair, err := authService.Login(r.Context(), user.Credentials{
			Email:    data.Email,
			Username: data.Username,
			Password: data.Password,
		})
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		authService.SetTokenPairToResponse(w, pair)
		render.JSON(w, response{OK: true, User: newUserResponse(u)})
	})
}

func handleRefresh(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := authService.GetRefreshString(r)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		access, err := authService.Refresh(r.Context(), refresh)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		authService.SetAccessToResponse(w, access)
		render.JSON(w, messageResponse{OK: true, Message: "Refresh Successful"})
	})
}

func handleLogout(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := userctx.FromContext(r.Context())

		// No refresh token means nothing to revoke, cookies are cleared anyway
		refresh, _ := authService.GetRefreshString(r)

		if err := authService.Logout(r.Context(), userID, refresh); err != nil {
			render.Error(w, err, logger)
			return
		}

		authService.ClearTokens(w)
		render.JSON(w, messageResponse{OK: true, Message: "Logout Successful"})
	})
}
