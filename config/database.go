package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mazn1600/SmartBite/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 3
	connectDelay    = 2 * time.Second
)

// DSN prefers DIRECT_URL, then DATABASE_URL, then the individual DB_* settings.
func (c *Config) DSN() string {
	if c.DirectURL != "" {
		return c.DirectURL
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	sslmode := c.DBSSLMode
	if sslmode == "" {
		sslmode = "disable"
		if strings.Contains(c.DBHost, "supabase.co") || c.IsProduction() {
			sslmode = "require"
		}
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, sslmode)
}

// OpenDatabase connects with a few retries, sizes the pool and migrates the schema.
func OpenDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DirectURL == "" && cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		return nil, fmt.Errorf("database password is required: set DB_PASSWORD or DATABASE_URL")
	}

	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed",
			zap.Int("attempt", attempt),
			zap.String("host", redactedHost(cfg)),
			zap.Error(err))
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(30 * time.Second)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.FoodCategory{},
		&models.Food{},
		&models.MealPlan{},
		&models.MealFood{},
		&models.Store{},
		&models.FoodPrice{},
		&models.UserProgress{},
		&models.UserFavorite{},
		&models.UserFeedback{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}

func redactedHost(cfg *Config) string {
	raw := cfg.DirectURL
	if raw == "" {
		raw = cfg.DatabaseURL
	}
	if raw == "" {
		return cfg.DBHost
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "unparseable"
	}
	return u.Host
}
