package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evan/item-vault/internal/api"
	"github.com/evan/item-vault/internal/config"
	"github.com/evan/item-vault/internal/mail"
	"github.com/evan/item-vault/internal/repository/postgres"
	"github.com/evan/item-vault/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize mailer
	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.EmailsEnabled() {
		mailer = mail.NewSMTPMailer(cfg)
	}

	// Initialize services
	services := service.NewServices(repos, cfg, mailer)

	if err := ensureFirstSuperuser(services.User, cfg); err != nil {
		log.Fatalf("failed to bootstrap superuser: %v", err)
	}

	// Initialize router
	router := api.NewRouter(services)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// ensureFirstSuperuser creates the configured bootstrap superuser if no
// account with that email exists yet.
func ensureFirstSuperuser(users *service.UserService, cfg *config.Config) error {
	if cfg.FirstSuperuser == "" || cfg.FirstSuperuserPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := users.GetByEmail(ctx, cfg.FirstSuperuser)
	if err == nil {
		return nil
	}
	if !errors.Is(err, service.ErrUserNotFound) {
		return err
	}

	_, err = users.Create(ctx, service.CreateUserInput{
		Email:       cfg.FirstSuperuser,
		Password:    cfg.FirstSuperuserPassword,
		IsActive:    true,
		IsSuperuser: true,
	})
	if err != nil {
		return err
	}
	log.Printf("Created first superuser %s", cfg.FirstSuperuser)
	return nil
}
