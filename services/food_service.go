package services

import (
	"context"
	"math"
	"strings"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FoodService struct {
	db         *gorm.DB
	log        *zap.Logger
	categories *FoodCategoryService
}

func NewFoodService(db *gorm.DB, log *zap.Logger, categories *FoodCategoryService) *FoodService {
	return &FoodService{db: db, log: log, categories: categories}
}

type FoodInput struct {
	Name               string             `json:"name" binding:"required,min=2,max=255"`
	NameArabic         string             `json:"name_arabic" binding:"max=255"`
	Category           string             `json:"category" binding:"required,max=100"`
	Description        string             `json:"description"`
	CaloriesPer100g    *float64           `json:"calories_per_100g" binding:"required,gte=0"`
	ProteinPer100g     *float64           `json:"protein_per_100g" binding:"required,gte=0"`
	CarbsPer100g       *float64           `json:"carbs_per_100g" binding:"required,gte=0"`
	FatPer100g         *float64           `json:"fat_per_100g" binding:"required,gte=0"`
	FiberPer100g       float64            `json:"fiber_per_100g" binding:"gte=0"`
	SugarPer100g       float64            `json:"sugar_per_100g" binding:"gte=0"`
	SodiumPer100g      float64            `json:"sodium_per_100g" binding:"gte=0"`
	Vitamins           map[string]float64 `json:"vitamins"`
	Minerals           map[string]float64 `json:"minerals"`
	Allergens          []string           `json:"allergens"`
	ImageURL           string             `json:"image_url" binding:"omitempty,url,max=500"`
	RecipeInstructions string             `json:"recipe_instructions"`
	PreparationTime    int                `json:"preparation_time" binding:"gte=0"`
	Servings           int                `json:"servings" binding:"gte=0"`
	Tags               []string           `json:"tags"`
}

type FoodFilter struct {
	Category         string
	Query            string
	Tag              string
	ExcludeAllergens []string
	// SafeFor adds the user's own allergies to the exclusion list.
	SafeFor *uuid.UUID
	Page    int
	Limit   int
}

type ServingNutrition struct {
	FoodID           uuid.UUID          `json:"food_id"`
	Name             string             `json:"name"`
	ServingSize      float64            `json:"serving_size"`
	Nutrition        map[string]float64 `json:"nutrition"`
	MacroPercentages map[string]float64 `json:"macro_percentages"`
}

type FoodSafety struct {
	FoodID    uuid.UUID `json:"food_id"`
	Name      string    `json:"name"`
	Allergens []string  `json:"allergens"`
	Matched   []string  `json:"matched_allergies"`
	Safe      bool      `json:"safe"`
}

func (s *FoodService) List(ctx context.Context, f FoodFilter) (*Page[models.Food], error) {
	page, limit := clampPage(f.Page, f.Limit)
	db := s.db.WithContext(ctx)

	exclude := normalizeList(f.ExcludeAllergens)
	if f.SafeFor != nil {
		var u models.User
		if err := db.Select("allergies").First(&u, "id = ?", *f.SafeFor).Error; err != nil {
			return nil, lookupErr(err, "User")
		}
		exclude = append(exclude, normalizeList(u.Allergies)...)
	}

	q := db.Model(&models.Food{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(name_arabic) LIKE ? ESCAPE '\'`, like, like)
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		// tags are stored as a JSON array of strings
		q = q.Where(`LOWER(COALESCE(tags, '')) LIKE ? ESCAPE '\'`, `%"`+escapeLike(tag)+`"%`)
	}
	for _, a := range exclude {
		q = q.Where(`LOWER(COALESCE(allergens, '')) NOT LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(a))+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	foods := []models.Food{}
	if err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&foods).Error; err != nil {
		return nil, err
	}
	return &Page[models.Food]{Data: foods, Total: total, Page: page, Limit: limit}, nil
}

func (s *FoodService) Get(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	var f models.Food
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "Food")
	}
	return &f, nil
}

func (s *FoodService) Create(ctx context.Context, in FoodInput) (*models.Food, error) {
	if err := s.checkCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	f := &models.Food{}
	applyFoodInput(f, in)
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FoodService) Update(ctx context.Context, id uuid.UUID, in FoodInput) (*models.Food, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	applyFoodInput(f, in)
	if err := s.db.WithContext(ctx).Save(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// Delete refuses while meal plans or prices still point at the food.
func (s *FoodService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var meals, prices int64
	if err := db.Model(&models.MealFood{}).Where("food_id = ?", id).Count(&meals).Error; err != nil {
		return err
	}
	if err := db.Model(&models.FoodPrice{}).Where("food_id = ?", id).Count(&prices).Error; err != nil {
		return err
	}
	if meals > 0 || prices > 0 {
		return conflict("Food is referenced by meal plans or prices")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("food_id = ?", id).Delete(&models.UserFavorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(f).Error
	})
}

func (s *FoodService) Nutrition(ctx context.Context, id uuid.UUID, grams float64) (*ServingNutrition, error) {
	if math.IsNaN(grams) || math.IsInf(grams, 0) || grams <= 0 {
		return nil, invalid("serving must be greater than 0")
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	n := f.NutritionForServing(grams)
	for k, v := range n {
		n[k] = round2(v)
	}
	m := f.MacroPercentages()
	for k, v := range m {
		m[k] = round2(v)
	}
	return &ServingNutrition{FoodID: f.ID, Name: f.Name, ServingSize: grams, Nutrition: n, MacroPercentages: m}, nil
}

// Safety matches the food's allergens against the user's allergies.
func (s *FoodService) Safety(ctx context.Context, id, userID uuid.UUID) (*FoodSafety, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := s.db.WithContext(ctx).Select("allergies").First(&u, "id = ?", userID).Error; err != nil {
		return nil, lookupErr(err, "User")
	}

	matched := []string{}
	for _, a := range u.Allergies {
		if f.ContainsAllergen(a) {
			matched = append(matched, a)
		}
	}
	allergens := f.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	return &FoodSafety{FoodID: f.ID, Name: f.Name, Allergens: allergens, Matched: matched, Safe: len(matched) == 0}, nil
}

func (s *FoodService) checkCategory(ctx context.Context, name string) error {
	ok, err := s.categories.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("Unknown food category: %s", name)
	}
	return nil
}

func applyFoodInput(f *models.Food, in FoodInput) {
	f.Name = in.Name
	f.NameArabic = in.NameArabic
	f.Category = in.Category
	f.Description = in.Description
	f.CaloriesPer100g = *in.CaloriesPer100g
	f.ProteinPer100g = *in.ProteinPer100g
	f.CarbsPer100g = *in.CarbsPer100g
	f.FatPer100g = *in.FatPer100g
	f.FiberPer100g = in.FiberPer100g
	f.SugarPer100g = in.SugarPer100g
	f.SodiumPer100g = in.SodiumPer100g
	f.Vitamins = in.Vitamins
	f.Minerals = in.Minerals
	f.Allergens = normalizeList(in.Allergens)
	f.ImageURL = in.ImageURL
	f.RecipeInstructions = in.RecipeInstructions
	f.PreparationTime = in.PreparationTime
	f.Servings = in.Servings
	f.Tags = normalizeList(in.Tags)
	if f.Servings == 0 {
		f.Servings = 1
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes user input match literally inside a LIKE pattern escaped with '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
