package services

import (
	"context"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FeedbackService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFeedbackService(db *gorm.DB, log *zap.Logger) *FeedbackService {
	return &FeedbackService{db: db, log: log}
}

type FeedbackInput struct {
	MealPlanID   *uuid.UUID `json:"meal_plan_id"`
	FoodID       *uuid.UUID `json:"food_id"`
	Rating       *int       `json:"rating" binding:"omitempty,min=1,max=5"`
	FeedbackText string     `json:"feedback_text" binding:"max=5000"`
	FeedbackType string     `json:"feedback_type" binding:"required,max=50"`
}

type FoodFeedback struct {
	FoodID        uuid.UUID             `json:"food_id"`
	AverageRating *float64              `json:"average_rating"`
	RatingCount   int64                 `json:"rating_count"`
	Feedback      []models.UserFeedback `json:"feedback"`
}

func (s *FeedbackService) Submit(ctx context.Context, userID uuid.UUID, in FeedbackInput) (*models.UserFeedback, error) {
	db := s.db.WithContext(ctx)
	if in.MealPlanID != nil {
		if err := db.First(&models.MealPlan{}, "id = ? AND user_id = ?", *in.MealPlanID, userID).Error; err != nil {
			return nil, lookupErr(err, "Meal plan")
		}
	}
	if in.FoodID != nil {
		if err := db.First(&models.Food{}, "id = ?", *in.FoodID).Error; err != nil {
			return nil, lookupErr(err, "Food")
		}
	}

	fb := &models.UserFeedback{
		UserID:       userID,
		MealPlanID:   in.MealPlanID,
		FoodID:       in.FoodID,
		Rating:       in.Rating,
		FeedbackText: in.FeedbackText,
		FeedbackType: in.FeedbackType,
	}
	if err := db.Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *FeedbackService) Mine(ctx context.Context, userID uuid.UUID) ([]models.UserFeedback, error) {
	out := []models.UserFeedback{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *FeedbackService) ForFood(ctx context.Context, foodID uuid.UUID) (*FoodFeedback, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&models.Food{}, "id = ?", foodID).Error; err != nil {
		return nil, lookupErr(err, "Food")
	}

	out := &FoodFeedback{FoodID: foodID, Feedback: []models.UserFeedback{}}
	if err := db.Where("food_id = ?", foodID).Order("created_at DESC").Find(&out.Feedback).Error; err != nil {
		return nil, err
	}

	var sum int
	for _, fb := range out.Feedback {
		if fb.Rating != nil {
			sum += *fb.Rating
			out.RatingCount++
		}
	}
	if out.RatingCount > 0 {
		avg := round2(float64(sum) / float64(out.RatingCount))
		out.AverageRating = &avg
	}
	return out, nil
}
