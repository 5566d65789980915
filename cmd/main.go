package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mazn1600/SmartBite/config"
	"github.com/mazn1600/SmartBite/middlewares"
	"github.com/mazn1600/SmartBite/routes"
	"github.com/mazn1600/SmartBite/services"
	"github.com/mazn1600/SmartBite/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := utils.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := routes.Deps{
		Config:  cfg,
		Log:     log,
		Metrics: middlewares.NewMetrics(),
		Limiter: middlewares.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
	}
	deps.Limiter.StartCleanup(time.Minute, ctx.Done())

	var (
		uploader services.ImageUploader
		detector services.LabelDetector
		mailer   services.Mailer = utils.LogMailer{Log: log}
	)
	if cfg.AWSRegion != "" {
		awsCfg, err := utils.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			log.Warn("AWS disabled", zap.Error(err))
		} else {
			detector = utils.NewRekognitionDetector(awsCfg)
			if cfg.S3Bucket != "" {
				uploader = utils.NewS3Uploader(awsCfg, cfg.S3Bucket, cfg.CloudFrontURL)
			}
			if cfg.SESEmail != "" {
				mailer = utils.NewSESMailer(awsCfg, cfg.SESEmail)
			}
		}
	}

	var cache services.PipelineCache
	if cfg.RedisURL != "" {
		rc, err := services.NewRedisPipelineCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("food analysis cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	usda := services.NewUSDAService(cfg.USDABaseURL, cfg.USDAAPIKey, cfg.USDATimeout, log)
	deps.Analysis = services.NewFoodAnalysisService(usda, detector, cache, cfg.USDACacheTTL, log)

	if cfg.DBEnabled {
		db, err := config.OpenDatabase(cfg, log)
		if err != nil {
			log.Fatal("database init failed", zap.Error(err))
		}
		log.Info("database connected")

		hub := services.NewRealtimeHub(log)
		categories := services.NewFoodCategoryService(db, log)
		deps.App = services.NewAppService(db)
		deps.Hub = hub
		deps.Auth = services.NewAuthService(db, log, mailer, cfg.JWTSecret, cfg.JWTExpiresIn)
		deps.Users = services.NewUserService(db, log, uploader)
		deps.Categories = categories
		deps.Foods = services.NewFoodService(db, log, categories)
		deps.MealPlans = services.NewMealPlanService(db, log, hub)
		deps.Stores = services.NewStoreService(db, log)
		deps.Progress = services.NewProgressService(db, log, hub)
		deps.Favorites = services.NewFavoriteService(db, log, hub)
		deps.Feedback = services.NewFeedbackService(db, log)
	} else {
		log.Warn("DB_ENABLED=false; running without a database")
		deps.App = services.NewAppService(nil)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
