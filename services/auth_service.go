package services

import (
	"context"
	"errors"
	"time"

	"github.com/mazn1600/SmartBite/models"
	"github.com/mazn1600/SmartBite/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer delivers account emails.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

type AuthService struct {
	db       *gorm.DB
	log      *zap.Logger
	mailer   Mailer
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, log *zap.Logger, mailer Mailer, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{db: db, log: log, mailer: mailer, secret: secret, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Email            string   `json:"email" binding:"required,email"`
	Password         string   `json:"password" binding:"required,min=8,max=50"`
	Name             string   `json:"name" binding:"required,min=2,max=50"`
	Age              int      `json:"age" binding:"required,min=13,max=120"`
	Height           float64  `json:"height" binding:"required,min=100,max=250"`
	Weight           float64  `json:"weight" binding:"required,min=20,max=300"`
	TargetWeight     *float64 `json:"target_weight" binding:"omitempty,min=20,max=300"`
	Gender           string   `json:"gender" binding:"required,oneof=male female other"`
	ActivityLevel    string   `json:"activity_level" binding:"required,oneof=sedentary lightly_active moderately_active very_active extremely_active"`
	Goal             string   `json:"goal" binding:"required,oneof=weight_loss weight_gain maintenance muscle_gain"`
	Allergies        []string `json:"allergies" binding:"omitempty,dive,max=100"`
	HealthConditions []string `json:"health_conditions" binding:"omitempty,dive,max=100"`
	FoodPreferences  []string `json:"food_preferences" binding:"omitempty,dive,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type AuthResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, conflict("User with this email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:            email,
		PasswordHash:     hash,
		Name:             in.Name,
		Age:              in.Age,
		Height:           in.Height,
		Weight:           in.Weight,
		TargetWeight:     in.TargetWeight,
		Gender:           in.Gender,
		ActivityLevel:    in.ActivityLevel,
		Goal:             in.Goal,
		Allergies:        normalizeList(in.Allergies),
		HealthConditions: normalizeList(in.HealthConditions),
		FoodPreferences:  normalizeList(in.FoodPreferences),
		IsActive:         true,
		VerificationCode: utils.GenerateVerificationCode(),
	}
	if err := writeErr(db.Create(user).Error, "User with this email already exists"); err != nil {
		return nil, err
	}

	// A failed mail does not fail registration; the code can be reissued.
	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(ctx, user.Email, user.VerificationCode); err != nil {
			s.log.Warn("verification mail failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !utils.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}
	return s.issue(&user)
}

func (s *AuthService) VerifyEmail(ctx context.Context, in VerifyEmailInput) error {
	var user models.User
	db := s.db.WithContext(ctx)
	if err := db.Where("email = ?", normalizeEmail(in.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("Invalid verification code")
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if user.VerificationCode == "" || user.VerificationCode != in.Code {
		return invalid("Invalid verification code")
	}
	return db.Model(&user).Updates(map[string]any{
		"email_verified":    true,
		"verification_code": "",
	}).Error
}

// ResendVerification issues a fresh code to an unverified account.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	db := s.db.WithContext(ctx)
	if err := db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return lookupErr(err, "User")
	}
	if user.EmailVerified {
		return conflict("Email already verified")
	}
	code := utils.GenerateVerificationCode()
	if err := db.Model(&user).Update("verification_code", code).Error; err != nil {
		return err
	}
	if s.mailer == nil {
		return newError(ErrNotConfigured, "Email delivery is not configured")
	}
	if err := s.mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
		return newError(ErrUpstream, "Failed to send verification email")
	}
	return nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, _, err := utils.ParseJWT(s.secret, token)
	if err != nil {
		return nil, newError(ErrInvalidCredentials, "Invalid or expired token")
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrInvalidCredentials, "User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, newError(ErrInvalidCredentials, "Account is deactivated")
	}
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateJWT(s.secret, user.ID, user.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, User: user}, nil
}

