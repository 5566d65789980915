package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	AppName        = "SmartBite API"
	AppVersion     = "1.0.0"
	AppDescription = "AI-powered personalized nutrition and meal planning API for Saudi Arabia"
)

type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type Version struct {
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Readiness struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// AppService reports liveness, version and readiness. db may be nil when
// the database is disabled.
type AppService struct {
	db *gorm.DB
}

func NewAppService(db *gorm.DB) *AppService {
	return &AppService{db: db}
}

func (s *AppService) Health() Health {
	return Health{
		Status:    "healthy",
		Message:   "SmartBite API is running successfully",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func (s *AppService) Version() Version {
	return Version{Version: AppVersion, Name: AppName, Description: AppDescription}
}

func (s *AppService) Ready(ctx context.Context) (Readiness, error) {
	if s.db == nil {
		return Readiness{Status: "ok", Database: "disabled"}, nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return Readiness{Status: "unavailable", Database: "error"}, newError(ErrUpstream, "database unreachable")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return Readiness{Status: "unavailable", Database: "down"}, newError(ErrUpstream, "database unreachable")
	}
	return Readiness{Status: "ok", Database: "up"}, nil
}
