package handlers

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/evan/item-vault/internal/domain"
	"github.com/google/uuid"
)

// MessageResponse is the generic confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public shape of a user. The password hash never
// leaves the service layer.
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	FullName    *string `json:"full_name"`
}

type UsersResponse struct {
	Data  []UserResponse `json:"data"`
	Count int64          `json:"count"`
}

type ItemResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OwnerID     string  `json:"owner_id"`
}

type ItemsResponse struct {
	Data  []ItemResponse `json:"data"`
	Count int64          `json:"count"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		FullName:    u.FullName,
	}
}

func toItemResponse(i *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          i.ID.String(),
		Title:       i.Title,
		Description: i.Description,
		OwnerID:     i.OwnerID.String(),
	}
}

// pagination reads the skip/limit query parameters with the API defaults.
func pagination(r *http.Request) (skip, limit int) {
	skip, limit = 0, 100
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return skip, limit
}

func parseUUID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}

func validEmail(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validPassword(s string) bool {
	return len(s) >= 8 && len(s) <= 40
}
