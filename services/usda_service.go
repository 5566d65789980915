package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mazn1600/SmartBite/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// USDAService talks to USDA FoodData Central.
type USDAService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewUSDAService(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *USDAService {
	if apiKey == "" {
		log.Warn("USDA_API_KEY not set; food analysis requests will fail")
	}
	return &USDAService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// USDANutrition is the simplified per-serving view of an FDC food.
type USDANutrition struct {
	FdcID       int64   `json:"fdcId,omitempty"`
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	ServingSize string  `json:"servingSize"`
}

// USDAMatch is the best search hit converted, plus the raw food it came from.
type USDAMatch struct {
	Nutrition USDANutrition
	Raw       json.RawMessage
}

type nutrientKey struct {
	id   int64
	name string
}

// FDC nutrient numbers.
var (
	nutrientEnergy  = nutrientKey{1008, "energy"}
	nutrientProtein = nutrientKey{1003, "protein"}
	nutrientCarbs   = nutrientKey{1005, "carbohydrate"}
	nutrientFat     = nutrientKey{1004, "total lipid"}
	nutrientFiber   = nutrientKey{1079, "fiber"}
	nutrientSugar   = nutrientKey{2000, "sugars"}
	nutrientSodium  = nutrientKey{1093, "sodium"}
)

// SearchFoods posts a search limited to the Foundation and SR Legacy data sets.
func (s *USDAService) SearchFoods(ctx context.Context, query string, pageSize int) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"pageSize":  pageSize,
		"dataType":  []string{"Foundation", "SR Legacy"},
		"sortBy":    "fdcId",
		"sortOrder": "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}
	s.log.Debug("usda search", zap.String("query", query), zap.Int("page_size", pageSize))
	return s.do(ctx, http.MethodPost, "/foods/search", bytes.NewReader(body))
}

func (s *USDAService) GetFoodDetails(ctx context.Context, fdcID int64) ([]byte, error) {
	s.log.Debug("usda food details", zap.Int64("fdc_id", fdcID))
	return s.do(ctx, http.MethodGet, "/food/"+strconv.FormatInt(fdcID, 10), nil)
}

// SearchAndGetNutrition returns nil without error when the search has no hits.
func (s *USDAService) SearchAndGetNutrition(ctx context.Context, foodName string) (*USDAMatch, error) {
	raw, err := s.SearchFoods(ctx, foodName, 5)
	if err != nil {
		return nil, err
	}
	foods := gjsonFoods(raw)
	if len(foods) == 0 {
		s.log.Info("no USDA results", zap.String("query", foodName))
		return nil, nil
	}

	best := foods[0]
	if fdcID := best.Get("fdcId").Int(); fdcID != 0 && len(best.Get("foodNutrients").Array()) == 0 {
		details, err := s.GetFoodDetails(ctx, fdcID)
		if err != nil {
			return nil, err
		}
		best = gjson.ParseBytes(details)
	}

	return &USDAMatch{Nutrition: ConvertUSDAFood(best), Raw: json.RawMessage(best.Raw)}, nil
}

// ConvertUSDAFood reads nutrients from either the details shape
// (nutrient.id, nutrient.name, amount) or the search shape (nutrientId, nutrientName, value).
func ConvertUSDAFood(food gjson.Result) USDANutrition {
	nutrients := food.Get("foodNutrients").Array()
	amount := func(k nutrientKey) float64 {
		if n, ok := findNutrient(nutrients, k); ok {
			if v := n.Get("amount"); v.Exists() {
				return v.Float()
			}
			return n.Get("value").Float()
		}
		return 0
	}

	name := food.Get("description").String()
	if name == "" {
		name = food.Get("foodDescription").String()
	}
	if name == "" {
		name = "Unknown Food"
	}

	return USDANutrition{
		FdcID:       food.Get("fdcId").Int(),
		Name:        name,
		Calories:    utils.Round(amount(nutrientEnergy), 0),
		Protein:     round1(amount(nutrientProtein)),
		Carbs:       round1(amount(nutrientCarbs)),
		Fat:         round1(amount(nutrientFat)),
		Fiber:       round1(amount(nutrientFiber)),
		Sugar:       round1(amount(nutrientSugar)),
		Sodium:      round1(amount(nutrientSodium)),
		ServingSize: servingSize(food),
	}
}

// findNutrient prefers an exact nutrient number and falls back to a name match.
func findNutrient(nutrients []gjson.Result, k nutrientKey) (gjson.Result, bool) {
	for _, n := range nutrients {
		if nutrientID(n) == k.id {
			return n, true
		}
	}
	for _, n := range nutrients {
		if strings.Contains(strings.ToLower(nutrientName(n)), k.name) {
			return n, true
		}
	}
	return gjson.Result{}, false
}

func nutrientID(n gjson.Result) int64 {
	if v := n.Get("nutrient.id"); v.Exists() {
		return v.Int()
	}
	return n.Get("nutrientId").Int()
}

func nutrientName(n gjson.Result) string {
	if v := n.Get("nutrient.name"); v.Exists() {
		return v.String()
	}
	return n.Get("nutrientName").String()
}

func servingSize(food gjson.Result) string {
	size := food.Get("servingSize")
	if !size.Exists() || size.Float() <= 0 {
		return "100g"
	}
	return strconv.FormatFloat(size.Float(), 'f', -1, 64) + food.Get("servingSizeUnit").String()
}

func (s *USDAService) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	if s.apiKey == "" {
		return nil, newError(ErrUpstream, "USDA API error: API key not configured")
	}

	u := s.baseURL + path + "?api_key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create USDA request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("usda request failed", zap.String("path", path), zap.Error(redactKey(err, s.apiKey)))
		return nil, newError(ErrUpstream, "USDA API error: request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrUpstream, "USDA API error: failed to read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "message").String()
		if msg == "" {
			msg = gjson.GetBytes(raw, "error.message").String()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		s.log.Error("usda non-2xx", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return nil, newError(ErrUpstream, "USDA API error: %d %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return nil, newError(ErrUpstream, "USDA API error: invalid JSON response")
	}
	return raw, nil
}

// redactKey keeps the api key out of logged url errors.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

func gjsonFoods(raw []byte) []gjson.Result {
	return gjson.GetBytes(raw, "foods").Array()
}
