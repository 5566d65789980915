package services

import (
	"context"
	"time"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MealPlanService struct {
	db     *gorm.DB
	log    *zap.Logger
	events EventPublisher
}

func NewMealPlanService(db *gorm.DB, log *zap.Logger, events EventPublisher) *MealPlanService {
	return &MealPlanService{db: db, log: log, events: events}
}

const dateLayout = "2006-01-02"

type MealPlanInput struct {
	WeekStartDate string `json:"week_start_date" binding:"required,datetime=2006-01-02"`
	WeekEndDate   string `json:"week_end_date" binding:"omitempty,datetime=2006-01-02"`
	IsGenerated   bool   `json:"is_generated"`
}

type MealFoodInput struct {
	FoodID      uuid.UUID `json:"food_id" binding:"required"`
	MealType    string    `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack"`
	DayOfWeek   *int      `json:"day_of_week" binding:"required,min=0,max=6"`
	ServingSize float64   `json:"serving_size" binding:"required,gt=0"`
}

type MealFoodFilter struct {
	Day      *int
	MealType string
}

type MealPlanSummary struct {
	MealPlanID        uuid.UUID `json:"meal_plan_id"`
	WeekStartDate     string    `json:"week_start_date"`
	WeekEndDate       string    `json:"week_end_date"`
	MealCount         int       `json:"meal_count"`
	ConsumedCount     int       `json:"consumed_count"`
	TotalCalories     float64   `json:"total_calories"`
	TotalProtein      float64   `json:"total_protein"`
	TotalCarbs        float64   `json:"total_carbs"`
	TotalFat          float64   `json:"total_fat"`
	TotalFiber        float64   `json:"total_fiber"`
	TotalSugar        float64   `json:"total_sugar"`
	TotalSodium       float64   `json:"total_sodium"`
	ConsumedCalories  float64   `json:"consumed_calories"`
	ConsumedPct       float64   `json:"consumed_pct"`
	DailyTarget       float64   `json:"daily_target_calories"`
	AvgDailyCalories  float64   `json:"avg_daily_calories"`
	AvgDailyTargetPct float64   `json:"avg_daily_target_pct"`
}

func (s *MealPlanService) List(ctx context.Context, userID uuid.UUID) ([]models.MealPlan, error) {
	plans := []models.MealPlan{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start_date DESC").
		Find(&plans).Error
	return plans, err
}

// Get loads a plan owned by the user, with meal foods and their foods.
func (s *MealPlanService) Get(ctx context.Context, userID, planID uuid.UUID) (*models.MealPlan, error) {
	return s.load(s.db.WithContext(ctx), userID, planID)
}

func (s *MealPlanService) Create(ctx context.Context, userID uuid.UUID, in MealPlanInput) (*models.MealPlan, error) {
	start, end, err := planDates(in)
	if err != nil {
		return nil, err
	}
	zero := 0.0
	p := &models.MealPlan{
		UserID:        userID,
		WeekStartDate: start,
		WeekEndDate:   end,
		IsGenerated:   in.IsGenerated,
		TotalCalories: &zero,
		TotalProtein:  &zero,
		TotalCarbs:    &zero,
		TotalFat:      &zero,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	p.MealFoods = []models.MealFood{}
	return p, nil
}

func (s *MealPlanService) Update(ctx context.Context, userID, planID uuid.UUID, in MealPlanInput) (*models.MealPlan, error) {
	db := s.db.WithContext(ctx)
	p, err := s.load(db, userID, planID)
	if err != nil {
		return nil, err
	}
	start, end, err := planDates(in)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.MealPlan{}).Where("id = ?", p.ID).Updates(map[string]any{
		"week_start_date": start,
		"week_end_date":   end,
		"is_generated":    in.IsGenerated,
	}).Error; err != nil {
		return nil, err
	}
	p.WeekStartDate, p.WeekEndDate, p.IsGenerated = start, end, in.IsGenerated
	return p, nil
}

func (s *MealPlanService) Delete(ctx context.Context, userID, planID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.load(tx, userID, planID)
		if err != nil {
			return err
		}
		if err := tx.Where("meal_plan_id = ?", p.ID).Delete(&models.MealFood{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserFeedback{}).Where("meal_plan_id = ?", p.ID).
			Update("meal_plan_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}

// AddMealFood snapshots the food's nutrition for the serving and refreshes the plan totals.
func (s *MealPlanService) AddMealFood(ctx context.Context, userID, planID uuid.UUID, in MealFoodInput) (*models.MealFood, error) {
	var out *models.MealFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.load(tx, userID, planID)
		if err != nil {
			return err
		}
		var food models.Food
		if err := tx.First(&food, "id = ?", in.FoodID).Error; err != nil {
			return lookupErr(err, "Food")
		}

		n := food.NutritionForServing(in.ServingSize)
		mf := &models.MealFood{
			MealPlanID:  p.ID,
			FoodID:      food.ID,
			MealType:    in.MealType,
			DayOfWeek:   *in.DayOfWeek,
			ServingSize: in.ServingSize,
			Calories:    round2(n["calories"]),
			Protein:     round2(n["protein"]),
			Carbs:       round2(n["carbs"]),
			Fat:         round2(n["fat"]),
			Fiber:       round2(n["fiber"]),
			Sugar:       round2(n["sugar"]),
			Sodium:      round2(n["sodium"]),
		}
		if err := tx.Create(mf).Error; err != nil {
			return err
		}
		mf.Food = &food

		p.MealFoods = append(p.MealFoods, *mf)
		if err := saveTotals(tx, p); err != nil {
			return err
		}
		out = mf
		return nil
	})
	return out, err
}

func (s *MealPlanService) RemoveMealFood(ctx context.Context, userID, planID, mealFoodID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.load(tx, userID, planID)
		if err != nil {
			return err
		}
		kept := p.MealFoods[:0]
		found := false
		for _, mf := range p.MealFoods {
			if mf.ID == mealFoodID {
				found = true
				continue
			}
			kept = append(kept, mf)
		}
		if !found {
			return notFound("Meal food")
		}
		if err := tx.Delete(&models.MealFood{}, "id = ?", mealFoodID).Error; err != nil {
			return err
		}
		p.MealFoods = kept
		return saveTotals(tx, p)
	})
}

// SetConsumed marks a meal food eaten (or not) and stamps consumed_at accordingly.
func (s *MealPlanService) SetConsumed(ctx context.Context, userID, planID, mealFoodID uuid.UUID, consumed bool) (*models.MealFood, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, userID, planID); err != nil {
		return nil, err
	}

	var mf models.MealFood
	if err := db.Preload("Food").First(&mf, "id = ? AND meal_plan_id = ?", mealFoodID, planID).Error; err != nil {
		return nil, lookupErr(err, "Meal food")
	}

	var at *time.Time
	if consumed {
		now := time.Now().UTC()
		at = &now
	}
	if err := db.Model(&models.MealFood{}).Where("id = ?", mf.ID).
		Updates(map[string]any{"is_consumed": consumed, "consumed_at": at}).Error; err != nil {
		return nil, err
	}
	mf.IsConsumed, mf.ConsumedAt = consumed, at

	if consumed {
		publish(s.events, userID, EventMealFoodConsumed, mf)
	}
	return &mf, nil
}

func (s *MealPlanService) MealFoods(ctx context.Context, userID, planID uuid.UUID, f MealFoodFilter) ([]models.MealFood, error) {
	p, err := s.Get(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if f.Day != nil && (*f.Day < 0 || *f.Day > 6) {
		return nil, invalid("day must be between 0 and 6")
	}

	if f.Day != nil {
		p.MealFoods = p.MealsByDay(*f.Day)
	}
	if f.MealType != "" {
		p.MealFoods = p.MealsByType(f.MealType)
	}
	return p.MealFoods, nil
}

func (s *MealPlanService) Summary(ctx context.Context, userID, planID uuid.UUID) (*MealPlanSummary, error) {
	db := s.db.WithContext(ctx)
	p, err := s.load(db, userID, planID)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := db.First(&u, "id = ?", userID).Error; err != nil {
		return nil, lookupErr(err, "User")
	}

	sum := &MealPlanSummary{
		MealPlanID:    p.ID,
		WeekStartDate: p.WeekStartDate.Format(dateLayout),
		WeekEndDate:   p.WeekEndDate.Format(dateLayout),
		MealCount:     len(p.MealFoods),
		TotalFiber:    round2(p.TotalFiber()),
		TotalSugar:    round2(p.TotalSugar()),
		TotalSodium:   round2(p.TotalSodium()),
		DailyTarget:   round2(u.TargetCalories()),
	}
	p.RecomputeTotals()
	sum.TotalCalories = round2(*p.TotalCalories)
	sum.TotalProtein = round2(*p.TotalProtein)
	sum.TotalCarbs = round2(*p.TotalCarbs)
	sum.TotalFat = round2(*p.TotalFat)

	for _, mf := range p.MealFoods {
		if mf.IsConsumed {
			sum.ConsumedCount++
			sum.ConsumedCalories += mf.Calories
		}
	}
	sum.ConsumedCalories = round2(sum.ConsumedCalories)
	sum.ConsumedPct = pct(sum.ConsumedCalories, sum.TotalCalories)

	days := int(p.WeekEndDate.Sub(p.WeekStartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	sum.AvgDailyCalories = round2(sum.TotalCalories / float64(days))
	sum.AvgDailyTargetPct = pct(sum.AvgDailyCalories, sum.DailyTarget)
	return sum, nil
}

func (s *MealPlanService) owned(db *gorm.DB, userID, planID uuid.UUID) (*models.MealPlan, error) {
	var p models.MealPlan
	if err := db.First(&p, "id = ? AND user_id = ?", planID, userID).Error; err != nil {
		return nil, lookupErr(err, "Meal plan")
	}
	return &p, nil
}

func (s *MealPlanService) load(db *gorm.DB, userID, planID uuid.UUID) (*models.MealPlan, error) {
	var p models.MealPlan
	err := db.
		Preload("MealFoods", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, created_at ASC")
		}).
		Preload("MealFoods.Food").
		First(&p, "id = ? AND user_id = ?", planID, userID).Error
	if err != nil {
		return nil, lookupErr(err, "Meal plan")
	}
	if p.MealFoods == nil {
		p.MealFoods = []models.MealFood{}
	}
	return &p, nil
}

func saveTotals(tx *gorm.DB, p *models.MealPlan) error {
	p.RecomputeTotals()
	return tx.Model(&models.MealPlan{}).Where("id = ?", p.ID).Updates(map[string]any{
		"total_calories": round2(*p.TotalCalories),
		"total_protein":  round2(*p.TotalProtein),
		"total_carbs":    round2(*p.TotalCarbs),
		"total_fat":      round2(*p.TotalFat),
	}).Error
}

// planDates defaults the end of the week to start + 6 days.
func planDates(in MealPlanInput) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, in.WeekStartDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("week_start_date must be YYYY-MM-DD")
	}
	end := start.AddDate(0, 0, 6)
	if in.WeekEndDate != "" {
		if end, err = time.ParseInLocation(dateLayout, in.WeekEndDate, time.UTC); err != nil {
			return time.Time{}, time.Time{}, invalid("week_end_date must be YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalid("week_end_date must not precede week_start_date")
	}
	return start, end, nil
}
