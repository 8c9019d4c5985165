package api

import (
	"net/http"

	"github.com/evan/item-vault/internal/api/handlers"
	"github.com/evan/item-vault/internal/api/middleware"
	"github.com/evan/item-vault/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User)
	itemHandler := handlers.NewItemHandler(services.Item)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Login and password recovery, no auth required
		r.Post("/login/access-token", authHandler.Login)
		r.Post("/password-recovery/{email}", authHandler.RecoverPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Post("/login/test-token", authHandler.TestToken)
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", userHandler.Signup)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))

				r.Get("/me", userHandler.Me)
				r.Patch("/me", userHandler.UpdateMe)
				r.Patch("/me/password", userHandler.UpdatePasswordMe)
				r.Delete("/me", userHandler.DeleteMe)
				r.Get("/{id}", userHandler.GetByID)

				// Superuser-only management
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSuperuser)
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
					r.Patch("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
				})
			})
		})

		// Item routes
		r.Route("/items", func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Get("/{id}", itemHandler.Get)
			r.Put("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
		})
	})

	return r
}
