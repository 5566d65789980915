package services

import (
	"context"
	"errors"
	"time"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StoreService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStoreService(db *gorm.DB, log *zap.Logger) *StoreService {
	return &StoreService{db: db, log: log}
}

type StoreInput struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	NameArabic  string `json:"name_arabic" binding:"max=255"`
	LogoURL     string `json:"logo_url" binding:"omitempty,url,max=500"`
	Website     string `json:"website" binding:"omitempty,url,max=255"`
	APIEndpoint string `json:"api_endpoint" binding:"omitempty,url,max=255"`
	IsActive    *bool  `json:"is_active"`
}

type PriceInput struct {
	FoodID      uuid.UUID       `json:"food_id" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit" binding:"omitempty,max=20"`
	IsAvailable *bool           `json:"is_available"`
}

// PriceComparison lists a food's available prices in active stores, cheapest first.
type PriceComparison struct {
	FoodID   uuid.UUID          `json:"food_id"`
	Prices   []models.FoodPrice `json:"prices"`
	Cheapest *models.FoodPrice  `json:"cheapest"`
}

func (s *StoreService) List(ctx context.Context, includeInactive bool) ([]models.Store, error) {
	stores := []models.Store{}
	q := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	return stores, q.Find(&stores).Error
}

func (s *StoreService) Get(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var st models.Store
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "Store")
	}
	return &st, nil
}

func (s *StoreService) Create(ctx context.Context, in StoreInput) (*models.Store, error) {
	db := s.db.WithContext(ctx)
	if err := s.checkName(db, in.Name, uuid.Nil); err != nil {
		return nil, err
	}
	st := &models.Store{
		Name:        in.Name,
		NameArabic:  in.NameArabic,
		LogoURL:     in.LogoURL,
		Website:     in.Website,
		APIEndpoint: in.APIEndpoint,
		IsActive:    true,
	}
	if err := writeErr(db.Create(st).Error, "Store with this name already exists"); err != nil {
		return nil, err
	}
	// default:true columns ignore a false zero value on insert
	if in.IsActive != nil && !*in.IsActive {
		if err := db.Model(st).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		st.IsActive = false
	}
	return st, nil
}

func (s *StoreService) Update(ctx context.Context, id uuid.UUID, in StoreInput) (*models.Store, error) {
	db := s.db.WithContext(ctx)
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(db, in.Name, id); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":         in.Name,
		"name_arabic":  in.NameArabic,
		"logo_url":     in.LogoURL,
		"website":      in.Website,
		"api_endpoint": in.APIEndpoint,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := writeErr(db.Model(st).Updates(updates).Error, "Store with this name already exists"); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *StoreService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Store
		if err := tx.First(&st, "id = ?", id).Error; err != nil {
			return lookupErr(err, "Store")
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.FoodPrice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&st).Error
	})
}

// SetPrice inserts or updates the (food, store) price and bumps last_updated.
func (s *StoreService) SetPrice(ctx context.Context, storeID uuid.UUID, in PriceInput) (*models.FoodPrice, error) {
	if !in.Price.IsPositive() {
		return nil, invalid("price must be greater than 0")
	}
	unit := in.Unit
	if unit == "" {
		unit = "kg"
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	var out models.FoodPrice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Store{}, "id = ?", storeID).Error; err != nil {
			return lookupErr(err, "Store")
		}
		if err := tx.First(&models.Food{}, "id = ?", in.FoodID).Error; err != nil {
			return lookupErr(err, "Food")
		}

		now := time.Now().UTC()
		err := tx.First(&out, "food_id = ? AND store_id = ?", in.FoodID, storeID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = models.FoodPrice{
				FoodID:      in.FoodID,
				StoreID:     storeID,
				Price:       in.Price.Round(2),
				Unit:        unit,
				LastUpdated: now,
				IsAvailable: true,
			}
			if err := writeErr(tx.Create(&out).Error, "Price for this food and store already exists"); err != nil {
				return err
			}
			if !available {
				if err := tx.Model(&out).Update("is_available", false).Error; err != nil {
					return err
				}
				out.IsAvailable = false
			}
			return nil
		case err != nil:
			return err
		}

		out.Price = in.Price.Round(2)
		out.Unit = unit
		out.IsAvailable = available
		out.LastUpdated = now
		return tx.Model(&out).Updates(map[string]any{
			"price":        out.Price,
			"unit":         unit,
			"is_available": available,
			"last_updated": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *StoreService) Prices(ctx context.Context, storeID uuid.UUID) ([]models.FoodPrice, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&models.Store{}, "id = ?", storeID).Error; err != nil {
		return nil, lookupErr(err, "Store")
	}
	prices := []models.FoodPrice{}
	err := db.Preload("Food").
		Where("store_id = ?", storeID).
		Order("last_updated DESC").
		Find(&prices).Error
	return prices, err
}

func (s *StoreService) ComparePrices(ctx context.Context, foodID uuid.UUID) (*PriceComparison, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&models.Food{}, "id = ?", foodID).Error; err != nil {
		return nil, lookupErr(err, "Food")
	}

	prices := []models.FoodPrice{}
	err := db.Preload("Store").
		Joins("JOIN stores ON stores.id = food_prices.store_id AND stores.is_active = ?", true).
		Where("food_prices.food_id = ? AND food_prices.is_available = ?", foodID, true).
		Order("food_prices.price ASC").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}

	out := &PriceComparison{FoodID: foodID, Prices: prices}
	if len(prices) > 0 {
		out.Cheapest = &prices[0]
	}
	return out, nil
}

func (s *StoreService) checkName(db *gorm.DB, name string, self uuid.UUID) error {
	var n int64
	q := db.Model(&models.Store{}).Where("name = ?", name)
	if self != uuid.Nil {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflict("Store with this name already exists")
	}
	return nil
}
