package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/evan/item-vault/internal/api/middleware"
	"github.com/evan/item-vault/internal/api/response"
	"github.com/evan/item-vault/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Login implements the OAuth2 password flow: form-encoded username and
// password in, bearer token out.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		response.Detail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadCredentials):
			response.Detail(w, http.StatusBadRequest, "Incorrect email or password")
		case errors.Is(err, service.ErrInactiveUser):
			response.Detail(w, http.StatusBadRequest, "Inactive user")
		default:
			log.Printf("ERROR [auth.Login] login failed: %v", err)
			response.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// TestToken echoes the identity behind the presented token.
func (h *AuthHandler) TestToken(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	response.JSON(w, http.StatusOK, toUserResponse(user))
}

// RecoverPassword sends a password-reset email for the given address.
func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := h.authService.RecoverPassword(r.Context(), email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Detail(w, http.StatusNotFound, "The user with this email does not exist in the system.")
			return
		}
		log.Printf("ERROR [auth.RecoverPassword] recovery failed for %s: %v", email, err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, MessageResponse{Message: "Password recovery email sent"})
}

// ResetPassword sets a new password from a valid reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validPassword(req.NewPassword) {
		response.Detail(w, http.StatusBadRequest, "Password must be between 8 and 40 characters")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			response.Detail(w, http.StatusBadRequest, "Invalid token")
		case errors.Is(err, service.ErrUserNotFound):
			response.Detail(w, http.StatusNotFound, "The user with this email does not exist in the system.")
		case errors.Is(err, service.ErrInactiveUser):
			response.Detail(w, http.StatusBadRequest, "Inactive user")
		default:
			log.Printf("ERROR [auth.ResetPassword] reset failed: %v", err)
			response.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}
