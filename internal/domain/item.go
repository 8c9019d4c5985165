package domain

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;index;not null"`
	Owner       *User     `json:"-" gorm:"foreignKey:OwnerID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
