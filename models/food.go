package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Food is a catalog entry; nutrient columns are per 100 g.
type Food struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string             `gorm:"not null" json:"name"`
	NameArabic         string             `gorm:"not null" json:"name_arabic"`
	Category           string             `gorm:"size:100;index;not null" json:"category"`
	Description        string             `gorm:"type:text" json:"description"`
	CaloriesPer100g    float64            `gorm:"type:decimal(8,2);not null" json:"calories_per_100g"`
	ProteinPer100g     float64            `gorm:"type:decimal(8,2);not null" json:"protein_per_100g"`
	CarbsPer100g       float64            `gorm:"type:decimal(8,2);not null" json:"carbs_per_100g"`
	FatPer100g         float64            `gorm:"type:decimal(8,2);not null" json:"fat_per_100g"`
	FiberPer100g       float64            `gorm:"type:decimal(8,2);default:0" json:"fiber_per_100g"`
	SugarPer100g       float64            `gorm:"type:decimal(8,2);default:0" json:"sugar_per_100g"`
	SodiumPer100g      float64            `gorm:"type:decimal(8,2);default:0" json:"sodium_per_100g"`
	Vitamins           map[string]float64 `gorm:"type:text;serializer:json" json:"vitamins"`
	Minerals           map[string]float64 `gorm:"type:text;serializer:json" json:"minerals"`
	Allergens          []string           `gorm:"type:text;serializer:json" json:"allergens"`
	ImageURL           string             `gorm:"size:500" json:"image_url"`
	RecipeInstructions string             `gorm:"type:text" json:"recipe_instructions"`
	PreparationTime    int                `gorm:"default:0" json:"preparation_time"`
	Servings           int                `gorm:"default:1" json:"servings"`
	Tags               []string           `gorm:"type:text;serializer:json" json:"tags"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	FoodCategory *FoodCategory `gorm:"foreignKey:Category;references:Name;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"food_category,omitempty"`
}

func (f *Food) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	if f.Servings == 0 {
		f.Servings = 1
	}
	return nil
}

// NutritionForServing scales the per-100 g values to a serving of the given grams.
func (f *Food) NutritionForServing(grams float64) map[string]float64 {
	m := grams / 100
	return map[string]float64{
		"calories": f.CaloriesPer100g * m,
		"protein":  f.ProteinPer100g * m,
		"carbs":    f.CarbsPer100g * m,
		"fat":      f.FatPer100g * m,
		"fiber":    f.FiberPer100g * m,
		"sugar":    f.SugarPer100g * m,
		"sodium":   f.SodiumPer100g * m,
	}
}

// MacroPercentages returns the share of calories from each macro (4/4/9 kcal per gram).
func (f *Food) MacroPercentages() map[string]float64 {
	kcal := f.CaloriesPer100g
	if kcal <= 0 {
		return map[string]float64{"protein": 0, "carbs": 0, "fat": 0}
	}
	return map[string]float64{
		"protein": f.ProteinPer100g * 4 / kcal * 100,
		"carbs":   f.CarbsPer100g * 4 / kcal * 100,
		"fat":     f.FatPer100g * 9 / kcal * 100,
	}
}

func (f *Food) ContainsAllergen(allergen string) bool {
	needle := strings.ToLower(strings.TrimSpace(allergen))
	if needle == "" {
		return false
	}
	for _, a := range f.Allergens {
		if strings.Contains(strings.ToLower(a), needle) {
			return true
		}
	}
	return false
}
