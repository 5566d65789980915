package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBEnabled   bool
	DatabaseURL string
	DirectURL   string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret    string
	JWTExpiresIn time.Duration

	FrontendURL     string
	RateLimitMax    int
	RateLimitWindow time.Duration

	USDAAPIKey   string
	USDABaseURL  string
	USDATimeout  time.Duration
	USDACacheTTL time.Duration
	RedisURL     string

	AWSRegion     string
	S3Bucket      string
	CloudFrontURL string
	SESEmail      string
}

const DefaultUSDABaseURL = "https://api.nal.usda.gov/fdc/v1"

// Load reads .env (if present) into the process environment and then resolves
// every setting from the environment with defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_ENABLED", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("USDA_BASE_URL", DefaultUSDABaseURL)
	v.SetDefault("USDA_TIMEOUT", "30s")
	v.SetDefault("USDA_CACHE_TTL", "24h")

	cfg := &Config{
		Port:          v.GetString("PORT"),
		Env:           v.GetString("ENV"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		DBEnabled:     !strings.EqualFold(v.GetString("DB_ENABLED"), "false"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DirectURL:     v.GetString("DIRECT_URL"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetInt("DB_PORT"),
		DBUser:        v.GetString("DB_USERNAME"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		FrontendURL:   v.GetString("FRONTEND_URL"),
		RateLimitMax:  v.GetInt("RATE_LIMIT_MAX"),
		USDAAPIKey:    v.GetString("USDA_API_KEY"),
		USDABaseURL:   strings.TrimRight(v.GetString("USDA_BASE_URL"), "/"),
		RedisURL:      v.GetString("REDIS_URL"),
		AWSRegion:     v.GetString("AWS_REGION"),
		S3Bucket:      v.GetString("S3_BUCKET"),
		CloudFrontURL: v.GetString("CLOUDFRONT_URL"),
		SESEmail:      v.GetString("SES_EMAIL"),
	}

	var err error
	if cfg.JWTExpiresIn, err = ParseDuration(v.GetString("JWT_EXPIRES_IN")); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if cfg.RateLimitWindow, err = ParseDuration(v.GetString("RATE_LIMIT_WINDOW")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}
	if cfg.USDATimeout, err = ParseDuration(v.GetString("USDA_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("USDA_TIMEOUT: %w", err)
	}
	if cfg.USDACacheTTL, err = ParseDuration(v.GetString("USDA_CACHE_TTL")); err != nil {
		return nil, fmt.Errorf("USDA_CACHE_TTL: %w", err)
	}

	if cfg.DBEnabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when the database is enabled")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ParseDuration accepts Go durations ("15m"), a day suffix ("7d") and bare
// integers, which are read as milliseconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
