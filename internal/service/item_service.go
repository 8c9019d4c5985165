package service

import (
	"context"
	"errors"

	"github.com/evan/item-vault/internal/domain"
	"github.com/evan/item-vault/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrForbidden    = errors.New("not enough permissions")
)

type ItemService struct {
	items repository.ItemRepository
}

func NewItemService(items repository.ItemRepository) *ItemService {
	return &ItemService{items: items}
}

type CreateItemInput struct {
	Title       string
	Description *string
}

type UpdateItemInput struct {
	Title       *string
	Description *string
}

// List returns the caller's items, or every item for a superuser.
func (s *ItemService) List(ctx context.Context, caller *domain.User, offset, limit int) ([]*domain.Item, int64, error) {
	if caller.IsSuperuser {
		return s.items.List(ctx, offset, limit)
	}
	return s.items.ListByOwner(ctx, caller.ID, offset, limit)
}

// Create stores a new item. The owner is always the caller; there is no way
// to create an item on another user's behalf.
func (s *ItemService) Create(ctx context.Context, caller *domain.User, input CreateItemInput) (*domain.Item, error) {
	item := &domain.Item{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     caller.ID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Get(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Item, error) {
	return s.getOwned(ctx, caller, id)
}

func (s *ItemService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, input UpdateItemInput) (*domain.Item, error) {
	item, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Description != nil {
		item.Description = input.Description
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	item, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.items.Delete(ctx, item.ID)
}

// getOwned fetches an item and checks the caller may act on it. Existence
// is checked first so a missing item is never reported as forbidden.
func (s *ItemService) getOwned(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !caller.IsSuperuser && item.OwnerID != caller.ID {
		return nil, ErrForbidden
	}
	return item, nil
}
