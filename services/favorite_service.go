package services

import (
	"context"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FavoriteService struct {
	db     *gorm.DB
	log    *zap.Logger
	events EventPublisher
}

func NewFavoriteService(db *gorm.DB, log *zap.Logger, events EventPublisher) *FavoriteService {
	return &FavoriteService{db: db, log: log, events: events}
}

type FavoriteInput struct {
	FoodID uuid.UUID `json:"food_id" binding:"required"`
}

func (s *FavoriteService) Add(ctx context.Context, userID, foodID uuid.UUID) (*models.UserFavorite, error) {
	db := s.db.WithContext(ctx)
	var food models.Food
	if err := db.First(&food, "id = ?", foodID).Error; err != nil {
		return nil, lookupErr(err, "Food")
	}

	var n int64
	if err := db.Model(&models.UserFavorite{}).
		Where("user_id = ? AND food_id = ?", userID, foodID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, conflict("Food is already in favorites")
	}

	fav := &models.UserFavorite{UserID: userID, FoodID: foodID}
	if err := writeErr(db.Create(fav).Error, "Food is already in favorites"); err != nil {
		return nil, err
	}
	fav.Food = &food

	publish(s.events, userID, EventFavoriteAdded, fav)
	return fav, nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.UserFavorite, error) {
	out := []models.UserFavorite{}
	err := s.db.WithContext(ctx).
		Preload("Food").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *FavoriteService) Remove(ctx context.Context, userID, foodID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND food_id = ?", userID, foodID).
		Delete(&models.UserFavorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Favorite")
	}
	return nil
}
