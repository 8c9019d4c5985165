package service

import (
	"context"
	"errors"
	"log"

	"github.com/evan/item-vault/internal/auth"
	"github.com/evan/item-vault/internal/config"
	"github.com/evan/item-vault/internal/domain"
	"github.com/evan/item-vault/internal/mail"
)

var (
	ErrInactiveUser = errors.New("inactive user")
	ErrInvalidToken = errors.New("invalid token")
)

type AuthService struct {
	users  *UserService
	tokens *auth.TokenManager
	mailer mail.Mailer
	cfg    *config.Config
}

func NewAuthService(users *UserService, tokens *auth.TokenManager, mailer mail.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, cfg: cfg}
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrInactiveUser
	}
	return s.tokens.NewAccessToken(user.ID)
}

// Identity resolves a bearer token to the user it was issued to. Absent and
// inactive users are rejected.
func (s *AuthService) Identity(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// RecoverPassword issues a reset token bound to the user's current password
// hash and mails it to them.
func (s *AuthService) RecoverPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.NewResetToken(user.Email, user.HashedPassword)
	if err != nil {
		return err
	}

	msg, err := mail.ResetPasswordMessage(s.cfg.ProjectName, s.cfg.ServerHost, user.Email, token, s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Printf("ERROR [auth.RecoverPassword] failed to send recovery email to %s: %v", user.Email, err)
		return err
	}
	return nil
}

// ResetPassword validates a reset token against the target user's current
// password hash and stores the new password. A token issued before any
// password change no longer verifies.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.ResetTokenSubject(token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.tokens.VerifyResetToken(token, user.HashedPassword); err != nil {
		return ErrInvalidToken
	}
	if !user.IsActive {
		return ErrInactiveUser
	}

	return s.users.storePassword(ctx, user, newPassword)
}
