package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserFeedback struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	MealPlanID   *uuid.UUID `gorm:"type:uuid;index" json:"meal_plan_id"`
	FoodID       *uuid.UUID `gorm:"type:uuid;index" json:"food_id"`
	Rating       *int       `json:"rating"` // 1-5
	FeedbackText string     `gorm:"type:text" json:"feedback_text"`
	FeedbackType string     `gorm:"size:50;not null" json:"feedback_type"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (UserFeedback) TableName() string {
	return "user_feedback"
}

func (f *UserFeedback) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}
