package services

import (
	"context"
	"errors"

	"github.com/mazn1600/SmartBite/models"
	"github.com/mazn1600/SmartBite/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageUploader stores a base64 data URI image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, dataURI, filenamePrefix string) (string, error)
}

type UserService struct {
	db       *gorm.DB
	log      *zap.Logger
	uploader ImageUploader
}

func NewUserService(db *gorm.DB, log *zap.Logger, uploader ImageUploader) *UserService {
	return &UserService{db: db, log: log, uploader: uploader}
}

// Profile is a user together with the derived body metrics.
type Profile struct {
	*models.User
	BMI            float64 `json:"bmi"`
	BMICategory    string  `json:"bmi_category"`
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"target_calories"`
}

func NewProfile(u *models.User) *Profile {
	bmi := u.BMI()
	return &Profile{
		User:           u,
		BMI:            round2(bmi),
		BMICategory:    utils.BMICategory(bmi),
		BMR:            round2(u.BMR()),
		TDEE:           round2(u.TDEE()),
		TargetCalories: round2(u.TargetCalories()),
	}
}

type UpdateProfileInput struct {
	Name             *string   `json:"name" binding:"omitempty,min=2,max=50"`
	Age              *int      `json:"age" binding:"omitempty,min=13,max=120"`
	Height           *float64  `json:"height" binding:"omitempty,min=100,max=250"`
	Weight           *float64  `json:"weight" binding:"omitempty,min=20,max=300"`
	TargetWeight     *float64  `json:"target_weight" binding:"omitempty,min=20,max=300"`
	Gender           *string   `json:"gender" binding:"omitempty,oneof=male female other"`
	ActivityLevel    *string   `json:"activity_level" binding:"omitempty,oneof=sedentary lightly_active moderately_active very_active extremely_active"`
	Goal             *string   `json:"goal" binding:"omitempty,oneof=weight_loss weight_gain maintenance muscle_gain"`
	Allergies        *[]string `json:"allergies" binding:"omitempty,dive,max=100"`
	HealthConditions *[]string `json:"health_conditions" binding:"omitempty,dive,max=100"`
	FoodPreferences  *[]string `json:"food_preferences" binding:"omitempty,dive,max=100"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=50"`
}

type ProfileImageInput struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ? AND is_active = ?", userID, true).Error; err != nil {
		return nil, lookupErr(err, "User")
	}
	return &u, nil
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewProfile(u), nil
}

func (s *UserService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*Profile, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Age != nil {
		u.Age = *in.Age
	}
	if in.Height != nil {
		u.Height = *in.Height
	}
	if in.Weight != nil {
		u.Weight = *in.Weight
	}
	if in.TargetWeight != nil {
		u.TargetWeight = in.TargetWeight
	}
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	if in.ActivityLevel != nil {
		u.ActivityLevel = *in.ActivityLevel
	}
	if in.Goal != nil {
		u.Goal = *in.Goal
	}
	if in.Allergies != nil {
		u.Allergies = normalizeList(*in.Allergies)
	}
	if in.HealthConditions != nil {
		u.HealthConditions = normalizeList(*in.HealthConditions)
	}
	if in.FoodPreferences != nil {
		u.FoodPreferences = normalizeList(*in.FoodPreferences)
	}
	if _, err := utils.CalculateBMI(u.Height, u.Weight); err != nil {
		return nil, invalid("Height and weight must be within a plausible range")
	}

	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, err
	}
	return NewProfile(u), nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(in.CurrentPassword, u.PasswordHash) {
		return newError(ErrInvalidCredentials, "Current password is incorrect")
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(u).Update("password_hash", hash).Error
}

func (s *UserService) UpdateProfileImage(ctx context.Context, userID uuid.UUID, dataURI string) (*Profile, error) {
	if s.uploader == nil {
		return nil, newError(ErrNotConfigured, "Image storage is not configured")
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadImage(ctx, dataURI, u.ID.String())
	if errors.Is(err, utils.ErrInvalidDataURI) {
		return nil, invalid("image_base64 must be a base64 image data URI")
	}
	if err != nil {
		s.log.Error("profile image upload failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, newError(ErrUpstream, "Failed to upload image")
	}

	if err := s.db.WithContext(ctx).Model(u).Update("profile_image_url", url).Error; err != nil {
		return nil, err
	}
	u.ProfileImageURL = url
	return NewProfile(u), nil
}

// Deactivate keeps the row so history stays intact; login is refused afterwards.
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("User")
	}
	return nil
}
