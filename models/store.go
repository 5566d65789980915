package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string      `gorm:"uniqueIndex;not null" json:"name"`
	NameArabic  string      `gorm:"not null" json:"name_arabic"`
	LogoURL     string      `gorm:"size:500" json:"logo_url"`
	Website     string      `gorm:"size:255" json:"website"`
	APIEndpoint string      `gorm:"size:255" json:"api_endpoint"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	Prices      []FoodPrice `json:"-"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// FoodPrice is unique per (food, store).
type FoodPrice struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FoodID      uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_food_store;not null" json:"food_id"`
	StoreID     uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_food_store;not null" json:"store_id"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit        string          `gorm:"size:20;default:kg" json:"unit"`
	LastUpdated time.Time       `gorm:"index" json:"last_updated"`
	IsAvailable bool            `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`

	Food  *Food  `json:"food,omitempty"`
	Store *Store `json:"store,omitempty"`
}

func (p *FoodPrice) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	if p.LastUpdated.IsZero() {
		p.LastUpdated = time.Now().UTC()
	}
	return nil
}
