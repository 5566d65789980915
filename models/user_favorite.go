package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserFavorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_user_food;not null" json:"user_id"`
	FoodID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_user_food;not null" json:"food_id"`
	CreatedAt time.Time `json:"created_at"`

	Food *Food `json:"food,omitempty"`
}

func (f *UserFavorite) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}
