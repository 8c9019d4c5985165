package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	IsSuperuser    bool      `json:"is_superuser" gorm:"not null;default:false"`
	FullName       *string   `json:"full_name"`
	Items          []Item    `json:"-" gorm:"foreignKey:OwnerID"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
