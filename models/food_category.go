package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FoodCategory struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	NameArabic  string         `gorm:"not null" json:"name_arabic"`
	Description string         `gorm:"type:text" json:"description"`
	ParentID    *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Children    []FoodCategory `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (c *FoodCategory) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
