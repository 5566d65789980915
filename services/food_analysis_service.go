package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mazn1600/SmartBite/utils"

	"go.uber.org/zap"
)

// LabelDetector names what an image shows.
type LabelDetector interface {
	DetectLabels(ctx context.Context, dataURI string) ([]string, error)
}

// PipelineCache stores serialized pipeline responses.
type PipelineCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type FoodAnalysisService struct {
	usda     *USDAService
	labels   LabelDetector
	cache    PipelineCache
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewFoodAnalysisService(usda *USDAService, labels LabelDetector, cache PipelineCache, cacheTTL time.Duration, log *zap.Logger) *FoodAnalysisService {
	return &FoodAnalysisService{usda: usda, labels: labels, cache: cache, cacheTTL: cacheTTL, log: log}
}

type PipelineInput struct {
	DishName        string   `json:"dishName"`
	DietTypes       []string `json:"dietTypes"`
	FoodDescription string   `json:"foodDescription"`
	CuisineType     string   `json:"cuisineType"`
}

type RecognizeInput struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type Macronutrients struct {
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

type NutrientAmount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Ingredient struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// AnalysisResult is the app-facing shape of a USDA lookup.
type AnalysisResult struct {
	Source            string           `json:"source"`
	FoodName          string           `json:"foodName"`
	TotalCalories     float64          `json:"totalCalories"`
	Macronutrients    Macronutrients   `json:"macronutrients"`
	Nutrients         []NutrientAmount `json:"nutrients"`
	Ingredients       []Ingredient     `json:"ingredients"`
	Allergens         []string         `json:"allergens"`
	DietCompatibility map[string]any   `json:"dietCompatibility"`
	Labels            []string         `json:"labels"`
	USDAData          json.RawMessage  `json:"_usdaData"`
}

type RecognitionResult struct {
	Labels   []string        `json:"labels"`
	Matched  string          `json:"matched_label"`
	Analysis *AnalysisResult `json:"analysis"`
}

func (s *FoodAnalysisService) FullPipeline(ctx context.Context, in PipelineInput) (*AnalysisResult, error) {
	dish := strings.TrimSpace(in.DishName)
	if utf8.RuneCountInString(dish) < 2 {
		return nil, invalid("Dish name must be at least 2 characters")
	}

	key := "food-analysis:" + strings.ToLower(dish)
	if res, ok := s.cached(ctx, key); ok {
		return res, nil
	}

	s.log.Info("food analysis", zap.String("dish", dish), zap.Strings("diet_types", in.DietTypes))
	match, err := s.usda.SearchAndGetNutrition(ctx, dish)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, newError(ErrNotFound, "No nutrition data found in USDA API for: %s", dish)
	}

	res := toAnalysisResult(dish, match)
	s.store(ctx, key, res)
	return res, nil
}

// Search returns the simplified nutrition of every hit without fetching details.
func (s *FoodAnalysisService) Search(ctx context.Context, query string, pageSize int) ([]USDANutrition, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		return nil, invalid("query must be at least 2 characters")
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}

	raw, err := s.usda.SearchFoods(ctx, query, pageSize)
	if err != nil {
		return nil, err
	}
	out := []USDANutrition{}
	for _, f := range gjsonFoods(raw) {
		out = append(out, ConvertUSDAFood(f))
	}
	return out, nil
}

// Recognize labels the image and runs the pipeline on the first label USDA knows.
func (s *FoodAnalysisService) Recognize(ctx context.Context, dataURI string) (*RecognitionResult, error) {
	if s.labels == nil {
		return nil, newError(ErrNotConfigured, "Image recognition is not configured")
	}
	labels, err := s.labels.DetectLabels(ctx, dataURI)
	if errors.Is(err, utils.ErrInvalidDataURI) {
		return nil, invalid("image_base64 must be a base64 image data URI")
	}
	if err != nil {
		s.log.Error("label detection failed", zap.Error(err))
		return nil, newError(ErrUpstream, "Image recognition failed")
	}
	if len(labels) == 0 {
		return nil, newError(ErrNotFound, "No food recognized in image")
	}

	for _, label := range labels {
		res, err := s.FullPipeline(ctx, PipelineInput{DishName: label})
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			continue
		}
		if err != nil {
			return nil, err
		}
		withLabels := *res
		withLabels.Labels = labels
		return &RecognitionResult{Labels: labels, Matched: label, Analysis: &withLabels}, nil
	}
	return nil, newError(ErrNotFound, "No nutrition data found in USDA API for: %s", strings.Join(labels, ", "))
}

func toAnalysisResult(dish string, m *USDAMatch) *AnalysisResult {
	n := m.Nutrition
	name := n.Name
	if name == "" {
		name = dish
	}
	return &AnalysisResult{
		Source:        "usda",
		FoodName:      name,
		TotalCalories: n.Calories,
		Macronutrients: Macronutrients{
			Protein:       n.Protein,
			Carbohydrates: n.Carbs,
			Fat:           n.Fat,
		},
		Nutrients: []NutrientAmount{
			{Name: "Fiber", Value: n.Fiber, Unit: "g"},
			{Name: "Sugar", Value: n.Sugar, Unit: "g"},
			{Name: "Sodium", Value: n.Sodium, Unit: "mg"},
		},
		Ingredients: []Ingredient{
			{Name: name, Category: "main", Quantity: 1, Unit: n.ServingSize},
		},
		Allergens:         []string{},
		DietCompatibility: map[string]any{},
		Labels:            []string{},
		USDAData:          m.Raw,
	}
}

func (s *FoodAnalysisService) cached(ctx context.Context, key string) (*AnalysisResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("pipeline cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res AnalysisResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (s *FoodAnalysisService) store(ctx context.Context, key string, res *AnalysisResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
		s.log.Warn("pipeline cache set failed", zap.String("key", key), zap.Error(err))
	}
}
