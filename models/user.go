package models

import (
	"strings"
	"time"

	"github.com/mazn1600/SmartBite/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"not null" json:"-"`
	Name             string    `gorm:"not null" json:"name"`
	Age              int       `gorm:"not null" json:"age"`
	Height           float64   `gorm:"type:decimal(5,2);not null" json:"height"` // cm
	Weight           float64   `gorm:"type:decimal(5,2);not null" json:"weight"` // kg
	TargetWeight     *float64  `gorm:"type:decimal(5,2)" json:"target_weight"`
	Gender           string    `gorm:"size:20;not null" json:"gender"`
	ActivityLevel    string    `gorm:"size:50;not null" json:"activity_level"`
	Goal             string    `gorm:"size:50;not null" json:"goal"`
	Allergies        []string  `gorm:"type:text;serializer:json" json:"allergies"`
	HealthConditions []string  `gorm:"type:text;serializer:json" json:"health_conditions"`
	FoodPreferences  []string  `gorm:"type:text;serializer:json" json:"food_preferences"`
	ProfileImageURL  string    `gorm:"size:500" json:"profile_image_url"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	EmailVerified    bool      `gorm:"default:false" json:"email_verified"`
	VerificationCode string    `gorm:"size:12" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	MealPlans       []MealPlan     `json:"-"`
	ProgressRecords []UserProgress `json:"-"`
	Favorites       []UserFavorite `json:"-"`
	Feedback        []UserFeedback `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func (u *User) BMI() float64 {
	return utils.BMI(u.Height, u.Weight)
}

func (u *User) BMR() float64 {
	return utils.BMR(u.Gender, u.Height, u.Weight, u.Age)
}

func (u *User) TDEE() float64 {
	return utils.TDEE(u.BMR(), u.ActivityLevel)
}

// TargetCalories adjusts TDEE by 500 kcal for weight loss and gain goals.
func (u *User) TargetCalories() float64 {
	tdee := u.TDEE()
	switch strings.ToLower(u.Goal) {
	case "weight_loss":
		return tdee - 500
	case "weight_gain":
		return tdee + 500
	default:
		return tdee
	}
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
