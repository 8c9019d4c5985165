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

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateUserRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type UpdateMeRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

// List returns a page of users. Superuser only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	users, count, err := h.userService.List(r.Context(), skip, limit)
	if err != nil {
		log.Printf("ERROR [users.List] failed to list users: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	data := make([]UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResponse(u))
	}
	response.JSON(w, http.StatusOK, UsersResponse{Data: data, Count: count})
}

// Create registers a new user on behalf of an administrator and sends the
// welcome email when delivery is configured.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validEmail(req.Email) {
		response.Detail(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if !validPassword(req.Password) {
		response.Detail(w, http.StatusBadRequest, "Password must be between 8 and 40 characters")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		IsActive:    isActive,
		IsSuperuser: req.IsSuperuser,
		Notify:      true,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Detail(w, http.StatusConflict, "The user with this email already exists in the system")
			return
		}
		log.Printf("ERROR [users.Create] failed to create user: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(user))
}

// Signup registers a new account without authentication.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validEmail(req.Email) {
		response.Detail(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if !validPassword(req.Password) {
		response.Detail(w, http.StatusBadRequest, "Password must be between 8 and 40 characters")
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsActive: true,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Detail(w, http.StatusConflict, "The user with this email already exists in the system")
			return
		}
		log.Printf("ERROR [users.Signup] failed to create user: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(user))
}

// Me returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	response.JSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe updates the authenticated user's email and full name.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		response.Detail(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	updated, err := h.userService.UpdateMe(r.Context(), user, service.UpdateMeInput{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Detail(w, http.StatusConflict, "User with this email already exists")
			return
		}
		log.Printf("ERROR [users.UpdateMe] failed to update user: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(updated))
}

// UpdatePasswordMe changes the authenticated user's password.
func (h *UserHandler) UpdatePasswordMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validPassword(req.NewPassword) {
		response.Detail(w, http.StatusBadRequest, "Password must be between 8 and 40 characters")
		return
	}

	err := h.userService.UpdatePassword(r.Context(), user, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadCredentials):
			response.Detail(w, http.StatusBadRequest, "Incorrect password")
		case errors.Is(err, service.ErrSamePassword):
			response.Detail(w, http.StatusBadRequest, "New password cannot be the same as the current one")
		default:
			log.Printf("ERROR [users.UpdatePasswordMe] failed to update password: %v", err)
			response.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

// DeleteMe removes the authenticated user's account and all their items.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.userService.DeleteMe(r.Context(), user); err != nil {
		if errors.Is(err, service.ErrSelfDeleteForbidden) {
			response.Detail(w, http.StatusForbidden, "Super users are not allowed to delete themselves")
			return
		}
		log.Printf("ERROR [users.DeleteMe] failed to delete user: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// GetByID returns a user by id. Callers may read themselves; reading anyone
// else requires superuser privileges.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := parseUUID(chi.URLParam(r, "id"))
	if !ok {
		response.Detail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Detail(w, http.StatusNotFound, "The user with this id does not exist in the system")
			return
		}
		log.Printf("ERROR [users.GetByID] failed to get user: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !caller.IsSuperuser && user.ID != caller.ID {
		response.Detail(w, http.StatusForbidden, "The user doesn't have enough privileges")
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(user))
}

// Update applies a partial update to any user. Superuser only.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(chi.URLParam(r, "id"))
	if !ok {
		response.Detail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		response.Detail(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if req.Password != nil && !validPassword(*req.Password) {
		response.Detail(w, http.StatusBadRequest, "Password must be between 8 and 40 characters")
		return
	}

	user, err := h.userService.Update(r.Context(), id, service.UpdateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Detail(w, http.StatusNotFound, "The user with this id does not exist in the system")
		case errors.Is(err, service.ErrEmailTaken):
			response.Detail(w, http.StatusConflict, "User with this email already exists")
		default:
			log.Printf("ERROR [users.Update] failed to update user: %v", err)
			response.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(user))
}

// Delete removes a user by id. Superuser only, and never against yourself.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := parseUUID(chi.URLParam(r, "id"))
	if !ok {
		response.Detail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), caller, id); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Detail(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrSelfDeleteForbidden):
			response.Detail(w, http.StatusForbidden, "Super users are not allowed to delete themselves")
		default:
			log.Printf("ERROR [users.Delete] failed to delete user: %v", err)
			response.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
