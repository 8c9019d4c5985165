package postgres

import (
	"context"

	"github.com/evan/item-vault/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *itemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, offset, limit int) ([]*domain.Item, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&domain.Item{}), offset, limit)
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Item{}).Where("owner_id = ?", ownerID)
	return r.list(query, offset, limit)
}

func (r *itemRepository) list(query *gorm.DB, offset, limit int) ([]*domain.Item, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*domain.Item
	err := query.
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Item{}, "id = ?", id).Error
}
