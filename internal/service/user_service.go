package service

import (
	"context"
	"errors"
	"log"

	"github.com/evan/item-vault/internal/auth"
	"github.com/evan/item-vault/internal/config"
	"github.com/evan/item-vault/internal/domain"
	"github.com/evan/item-vault/internal/mail"
	"github.com/evan/item-vault/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("a user with this email already exists")
	ErrBadCredentials      = errors.New("incorrect email or password")
	ErrSamePassword        = errors.New("new password cannot be the same as the current one")
	ErrSelfDeleteForbidden = errors.New("superusers are not allowed to delete themselves")
)

type UserService struct {
	users  repository.UserRepository
	mailer mail.Mailer
	cfg    *config.Config
}

func NewUserService(users repository.UserRepository, mailer mail.Mailer, cfg *config.Config) *UserService {
	return &UserService{users: users, mailer: mailer, cfg: cfg}
}

type CreateUserInput struct {
	Email       string
	Password    string
	FullName    *string
	IsActive    bool
	IsSuperuser bool
	// Notify sends the new-account email when delivery is configured.
	Notify bool
}

type UpdateUserInput struct {
	Email       *string
	Password    *string
	FullName    *string
	IsActive    *bool
	IsSuperuser *bool
}

type UpdateMeInput struct {
	Email    *string
	FullName *string
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := s.checkEmailFree(ctx, input.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:             uuid.New(),
		Email:          input.Email,
		HashedPassword: hashed,
		IsActive:       input.IsActive,
		IsSuperuser:    input.IsSuperuser,
		FullName:       input.FullName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if input.Notify && s.cfg.EmailsEnabled() {
		msg, err := mail.NewAccountMessage(s.cfg.ProjectName, s.cfg.ServerHost, input.Email, input.Password)
		if err == nil {
			err = s.mailer.Send(ctx, msg)
		}
		if err != nil {
			log.Printf("ERROR [user.Create] failed to send new account email to %s: %v", input.Email, err)
		}
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]*domain.User, int64, error) {
	return s.users.List(ctx, offset, limit)
}

// Update applies a partial patch to the user with the given id. Fields left
// nil are untouched; a patched password is re-hashed before storage.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := s.checkEmailFree(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashed, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if input.FullName != nil {
		user.FullName = input.FullName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMe handles the self-service profile update (email and full name).
func (s *UserService) UpdateMe(ctx context.Context, caller *domain.User, input UpdateMeInput) (*domain.User, error) {
	if input.Email != nil && *input.Email != caller.Email {
		if err := s.checkEmailFree(ctx, *input.Email, caller.ID); err != nil {
			return nil, err
		}
		caller.Email = *input.Email
	}
	if input.FullName != nil {
		caller.FullName = input.FullName
	}

	if err := s.users.Update(ctx, caller); err != nil {
		return nil, err
	}
	return caller, nil
}

// UpdatePassword changes the caller's own password after verifying the
// current one. The new password must differ from the current one.
func (s *UserService) UpdatePassword(ctx context.Context, caller *domain.User, current, newPassword string) error {
	if err := auth.CheckPassword(caller.HashedPassword, current); err != nil {
		return ErrBadCredentials
	}
	if current == newPassword {
		return ErrSamePassword
	}
	return s.storePassword(ctx, caller, newPassword)
}

// storePassword hashes and persists a new password without further checks.
func (s *UserService) storePassword(ctx context.Context, user *domain.User, newPassword string) error {
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	return s.users.Update(ctx, user)
}

// DeleteMe removes the caller's own account. Superusers may not delete
// themselves; their items are removed with them.
func (s *UserService) DeleteMe(ctx context.Context, caller *domain.User) error {
	if caller.IsSuperuser {
		return ErrSelfDeleteForbidden
	}
	return s.users.Delete(ctx, caller.ID)
}

// Delete removes the user with the given id on behalf of an administrator.
// Deleting your own account through this path is forbidden too.
func (s *UserService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if id == caller.ID {
		return ErrSelfDeleteForbidden
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// Authenticate resolves an email/password pair to a user. Unknown email and
// wrong password are indistinguishable in the result.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.HashedPassword, password); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string, selfID uuid.UUID) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}
