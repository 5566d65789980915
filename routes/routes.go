package routes

import (
	"time"

	"github.com/mazn1600/SmartBite/config"
	"github.com/mazn1600/SmartBite/controllers"
	"github.com/mazn1600/SmartBite/middlewares"
	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps carries everything the router mounts. The database-backed services are
// nil when DB_ENABLED=false; only the app and food-analysis routes exist then.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics *middlewares.Metrics
	Limiter *middlewares.RateLimiter

	App      *services.AppService
	Analysis *services.FoodAnalysisService

	Auth       *services.AuthService
	Users      *services.UserService
	Categories *services.FoodCategoryService
	Foods      *services.FoodService
	MealPlans  *services.MealPlanService
	Stores     *services.StoreService
	Progress   *services.ProgressService
	Favorites  *services.FavoriteService
	Feedback   *services.FeedbackService
	Hub        *services.RealtimeHub
}

func SetupRouter(d Deps) *gin.Engine {
	controllers.RegisterValidation()

	r := gin.New()
	r.Use(ginzap.Ginzap(d.Log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(d.Log, true))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
		r.GET("/metrics", gin.WrapH(d.Metrics.Exposer()))
	}
	if d.Limiter != nil {
		r.Use(d.Limiter.Handler())
	}

	app := controllers.NewAppController(d.App)
	r.GET("/", app.Health)
	r.GET("/version", app.Version)
	r.GET("/health/ready", app.Ready)

	analysis := controllers.NewFoodAnalysisController(d.Analysis)
	fa := r.Group("/food-analysis")
	{
		fa.POST("/full-pipeline", analysis.FullPipeline)
		fa.GET("/search", analysis.Search)
		fa.POST("/recognize", analysis.Recognize)
	}

	if d.Auth == nil {
		d.Log.Info("database disabled; only app and food-analysis routes are mounted")
		return r
	}
	mountDatabaseRoutes(r, d)
	return r
}

func mountDatabaseRoutes(r *gin.Engine, d Deps) {
	requireAuth := middlewares.AuthMiddleware(d.Auth)
	optionalAuth := middlewares.OptionalAuth(d.Auth)

	authCtl := controllers.NewAuthController(d.Auth)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.POST("/verify-email", authCtl.VerifyEmail)
		auth.POST("/resend-verification", authCtl.ResendVerification)
	}

	userCtl := controllers.NewUserController(d.Users)
	users := r.Group("/users", requireAuth)
	{
		users.GET("/me", userCtl.GetProfile)
		users.PUT("/me", userCtl.UpdateProfile)
		users.DELETE("/me", userCtl.Deactivate)
		users.PUT("/me/password", userCtl.ChangePassword)
		users.PUT("/me/profile-image", userCtl.UploadProfileImage)
	}

	foodCtl := controllers.NewFoodController(d.Foods, d.Stores, d.Feedback)
	foods := r.Group("/foods", optionalAuth)
	{
		foods.GET("", foodCtl.List)
		foods.GET("/:id", foodCtl.Get)
		foods.GET("/:id/nutrition", foodCtl.Nutrition)
		foods.GET("/:id/prices", foodCtl.Prices)
		foods.GET("/:id/feedback", foodCtl.FeedbackForFood)
		foods.GET("/:id/safety", requireAuth, foodCtl.Safety)
		foods.POST("", requireAuth, foodCtl.Create)
		foods.PUT("/:id", requireAuth, foodCtl.Update)
		foods.DELETE("/:id", requireAuth, foodCtl.Delete)
	}

	catCtl := controllers.NewFoodCategoryController(d.Categories)
	cats := r.Group("/food-categories")
	{
		cats.GET("", catCtl.List)
		cats.GET("/:id", catCtl.Get)
		cats.POST("", requireAuth, catCtl.Create)
		cats.PUT("/:id", requireAuth, catCtl.Update)
		cats.DELETE("/:id", requireAuth, catCtl.Delete)
	}

	storeCtl := controllers.NewStoreController(d.Stores)
	stores := r.Group("/stores")
	{
		stores.GET("", storeCtl.List)
		stores.GET("/:id", storeCtl.Get)
		stores.GET("/:id/prices", storeCtl.Prices)
		stores.POST("", requireAuth, storeCtl.Create)
		stores.PUT("/:id", requireAuth, storeCtl.Update)
		stores.DELETE("/:id", requireAuth, storeCtl.Delete)
		stores.PUT("/:id/prices", requireAuth, storeCtl.SetPrice)
	}

	planCtl := controllers.NewMealPlanController(d.MealPlans)
	plans := r.Group("/meal-plans", requireAuth)
	{
		plans.GET("", planCtl.List)
		plans.POST("", planCtl.Create)
		plans.GET("/:id", planCtl.Get)
		plans.PUT("/:id", planCtl.Update)
		plans.DELETE("/:id", planCtl.Delete)
		plans.GET("/:id/summary", planCtl.Summary)
		plans.GET("/:id/foods", planCtl.MealFoods)
		plans.POST("/:id/foods", planCtl.AddMealFood)
		plans.DELETE("/:id/foods/:mealFoodId", planCtl.RemoveMealFood)
		plans.PATCH("/:id/foods/:mealFoodId/consumed", planCtl.SetConsumed)
	}

	progressCtl := controllers.NewProgressController(d.Progress)
	progress := r.Group("/progress", requireAuth)
	{
		progress.POST("", progressCtl.Record)
		progress.GET("", progressCtl.List)
		progress.GET("/latest", progressCtl.Latest)
		progress.GET("/summary", progressCtl.Summary)
		progress.DELETE("/:id", progressCtl.Delete)
	}

	favCtl := controllers.NewFavoriteController(d.Favorites)
	favs := r.Group("/favorites", requireAuth)
	{
		favs.POST("", favCtl.Add)
		favs.GET("", favCtl.List)
		favs.DELETE("/:foodId", favCtl.Remove)
	}

	fbCtl := controllers.NewFeedbackController(d.Feedback)
	fb := r.Group("/feedback", requireAuth)
	{
		fb.POST("", fbCtl.Submit)
		fb.GET("/me", fbCtl.Mine)
	}

	if d.Hub != nil {
		rt := controllers.NewRealtimeController(d.Hub)
		r.GET("/ws/events", requireAuth, rt.EventsWS)
	}
}
