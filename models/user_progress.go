package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserProgress struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Weight            float64   `gorm:"type:decimal(5,2);not null" json:"weight"`
	BMI               float64   `gorm:"column:bmi;type:decimal(5,2);not null" json:"bmi"`
	BMR               float64   `gorm:"column:bmr;type:decimal(8,2);not null" json:"bmr"`
	TDEE              float64   `gorm:"column:tdee;type:decimal(8,2);not null" json:"tdee"`
	BodyFatPercentage *float64  `gorm:"type:decimal(5,2)" json:"body_fat_percentage"`
	MuscleMass        *float64  `gorm:"type:decimal(5,2)" json:"muscle_mass"`
	RecordedAt        time.Time `gorm:"index" json:"recorded_at"`
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	}
	return nil
}
