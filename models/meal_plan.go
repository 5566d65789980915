package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealTypes lists the accepted meal_type values.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

type MealPlan struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	WeekStartDate time.Time `gorm:"type:date;index;not null" json:"week_start_date"`
	WeekEndDate   time.Time `gorm:"type:date;index;not null" json:"week_end_date"`
	TotalCalories *float64  `gorm:"type:decimal(8,2)" json:"total_calories"`
	TotalProtein  *float64  `gorm:"type:decimal(8,2)" json:"total_protein"`
	TotalCarbs    *float64  `gorm:"type:decimal(8,2)" json:"total_carbs"`
	TotalFat      *float64  `gorm:"type:decimal(8,2)" json:"total_fat"`
	IsGenerated   bool      `gorm:"default:false" json:"is_generated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	MealFoods []MealFood     `json:"meal_foods,omitempty"`
	Feedback  []UserFeedback `json:"-"`
}

func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p *MealPlan) TotalFiber() float64 {
	var sum float64
	for _, mf := range p.MealFoods {
		sum += mf.Fiber
	}
	return sum
}

func (p *MealPlan) TotalSugar() float64 {
	var sum float64
	for _, mf := range p.MealFoods {
		sum += mf.Sugar
	}
	return sum
}

func (p *MealPlan) TotalSodium() float64 {
	var sum float64
	for _, mf := range p.MealFoods {
		sum += mf.Sodium
	}
	return sum
}

func (p *MealPlan) MealsByType(mealType string) []MealFood {
	out := []MealFood{}
	for _, mf := range p.MealFoods {
		if mf.MealType == mealType {
			out = append(out, mf)
		}
	}
	return out
}

func (p *MealPlan) MealsByDay(day int) []MealFood {
	out := []MealFood{}
	for _, mf := range p.MealFoods {
		if mf.DayOfWeek == day {
			out = append(out, mf)
		}
	}
	return out
}

// RecomputeTotals refreshes the macro totals from the loaded meal foods.
func (p *MealPlan) RecomputeTotals() {
	var cals, prot, carbs, fat float64
	for _, mf := range p.MealFoods {
		cals += mf.Calories
		prot += mf.Protein
		carbs += mf.Carbs
		fat += mf.Fat
	}
	p.TotalCalories = &cals
	p.TotalProtein = &prot
	p.TotalCarbs = &carbs
	p.TotalFat = &fat
}

// MealFood is one food scheduled in a plan, with its nutrition snapshot for the serving.
type MealFood struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MealPlanID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"meal_plan_id"`
	FoodID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"food_id"`
	MealType    string     `gorm:"size:20;index;not null" json:"meal_type"`
	DayOfWeek   int        `gorm:"index;not null" json:"day_of_week"`
	ServingSize float64    `gorm:"type:decimal(8,2);not null" json:"serving_size"`
	Calories    float64    `gorm:"type:decimal(8,2);not null" json:"calories"`
	Protein     float64    `gorm:"type:decimal(8,2);not null" json:"protein"`
	Carbs       float64    `gorm:"type:decimal(8,2);not null" json:"carbs"`
	Fat         float64    `gorm:"type:decimal(8,2);not null" json:"fat"`
	Fiber       float64    `gorm:"type:decimal(8,2);not null" json:"fiber"`
	Sugar       float64    `gorm:"type:decimal(8,2);not null" json:"sugar"`
	Sodium      float64    `gorm:"type:decimal(8,2);not null" json:"sodium"`
	IsConsumed  bool       `gorm:"default:false" json:"is_consumed"`
	ConsumedAt  *time.Time `json:"consumed_at"`
	CreatedAt   time.Time  `json:"created_at"`

	Food *Food `json:"food,omitempty"`
}

func (mf *MealFood) BeforeCreate(tx *gorm.DB) error {
	assignID(&mf.ID)
	return nil
}
