package service

import (
	"github.com/evan/item-vault/internal/auth"
	"github.com/evan/item-vault/internal/config"
	"github.com/evan/item-vault/internal/mail"
	"github.com/evan/item-vault/internal/repository"
)

type Services struct {
	User *UserService
	Item *ItemService
	Auth *AuthService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, mailer mail.Mailer) *Services {
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.AccessTokenTTL, cfg.ResetTokenTTL)

	userService := NewUserService(repos.User, mailer, cfg)
	return &Services{
		User: userService,
		Item: NewItemService(repos.Item),
		Auth: NewAuthService(userService, tokens, mailer, cfg),
	}
}
