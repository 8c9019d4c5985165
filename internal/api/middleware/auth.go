package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/evan/item-vault/internal/api/response"
	"github.com/evan/item-vault/internal/domain"
	"github.com/evan/item-vault/internal/service"
)

type contextKey string

const userKey contextKey = "currentUser"

// Auth resolves the bearer token to a user once per request and stores the
// identity in the request context for the handlers downstream.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Detail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Detail(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			user, err := authService.Identity(r.Context(), parts[1])
			if err != nil {
				switch {
				case errors.Is(err, service.ErrInvalidToken):
					response.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
				case errors.Is(err, service.ErrUserNotFound):
					response.Detail(w, http.StatusNotFound, "User not found")
				case errors.Is(err, service.ErrInactiveUser):
					response.Detail(w, http.StatusBadRequest, "Inactive user")
				default:
					log.Printf("ERROR [middleware.Auth] failed to resolve identity: %v", err)
					response.Detail(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperuser gates a route group to superusers. It must run after Auth.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			response.Detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !user.IsSuperuser {
			response.Detail(w, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser returns the authenticated user stored by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}
