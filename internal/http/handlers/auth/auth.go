package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"
	authService "github.com/tangerinesoft/photo-service/internal/auth"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

var validate = validator.New()

// Login exchanges the admin credential for a bearer token
// @Summary Admin login
// @Description Accepts form fields or a JSON body
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Admin username"
// @Param password formData string true "Admin password"
// @Success 200 {object} TokenResponse "Token issued"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Router /api/auth/login [post]
func Login(authenticator *authService.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest

		if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
				return
			}
		} else {
			req.Username = r.PostFormValue("username")
			req.Password = r.PostFormValue("password")
		}

		if err := validate.Struct(req); err != nil {
			response.Error(w, err)
			return
		}

		token, err := authenticator.Login(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, authService.ErrInvalidCredentials) {
				slog.Warn("Failed admin login", slog.String("remote_addr", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		response.WriteJSON(w, http.StatusOK, TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}
