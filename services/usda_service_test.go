package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const searchHit = `{
  "fdcId": 171287,
  "description": "Rice, white, cooked",
  "foodNutrients": [
    {"nutrientId": 1008, "nutrientName": "Energy", "value": 129.6},
    {"nutrientId": 1003, "nutrientName": "Protein", "value": 2.68},
    {"nutrientId": 1005, "nutrientName": "Carbohydrate, by difference", "value": 27.94},
    {"nutrientId": 1004, "nutrientName": "Total lipid (fat)", "value": 0.28},
    {"nutrientId": 1093, "nutrientName": "Sodium, Na", "value": 1}
  ]
}`

const detailsFood = `{
  "fdcId": 555,
  "description": "Hummus, commercial",
  "servingSize": 30,
  "servingSizeUnit": "g",
  "foodNutrients": [
    {"nutrient": {"id": 1008, "name": "Energy"}, "amount": 166},
    {"nutrient": {"id": 1003, "name": "Protein"}, "amount": 7.9},
    {"nutrient": {"id": 1005, "name": "Carbohydrate, by difference"}, "amount": 14.29},
    {"nutrient": {"id": 1004, "name": "Total lipid (fat)"}, "amount": 9.6},
    {"nutrient": {"id": 1079, "name": "Fiber, total dietary"}, "amount": 6},
    {"nutrient": {"id": 2000, "name": "Sugars, total"}, "amount": 0.27},
    {"nutrient": {"id": 1093, "name": "Sodium, Na"}, "amount": 379}
  ]
}`

type fdcStub struct {
	mu       sync.Mutex
	searches []string
	details  int
}

// newFDCStub serves "rice" from search results, "hummus" via the details
// endpoint, "broken" as a 500 and everything else as an empty result.
func newFDCStub(t *testing.T) (*httptest.Server, *fdcStub) {
	t.Helper()
	st := &fdcStub{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":"API_KEY_INVALID","message":"An invalid api_key was supplied"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/foods/search":
			b, _ := io.ReadAll(r.Body)
			q := gjson.GetBytes(b, "query").String()
			st.mu.Lock()
			st.searches = append(st.searches, q)
			st.mu.Unlock()
			switch q {
			case "rice":
				_, _ = io.WriteString(w, `{"totalHits":1,"foods":[`+searchHit+`]}`)
			case "hummus":
				_, _ = io.WriteString(w, `{"totalHits":1,"foods":[{"fdcId":555,"description":"Hummus, commercial"}]}`)
			case "broken":
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"message":"boom"}`)
			default:
				_, _ = io.WriteString(w, `{"totalHits":0,"foods":[]}`)
			}
		case r.Method == http.MethodGet && r.URL.Path == "/food/555":
			st.mu.Lock()
			st.details++
			st.mu.Unlock()
			_, _ = io.WriteString(w, detailsFood)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, st
}

func TestConvertUSDAFood(t *testing.T) {
	n := ConvertUSDAFood(gjson.Parse(searchHit))
	assert.Equal(t, int64(171287), n.FdcID)
	assert.Equal(t, "Rice, white, cooked", n.Name)
	assert.Equal(t, 130.0, n.Calories)
	assert.Equal(t, 2.7, n.Protein)
	assert.Equal(t, 27.9, n.Carbs)
	assert.Equal(t, 0.3, n.Fat)
	assert.Zero(t, n.Fiber)
	assert.Equal(t, "100g", n.ServingSize)

	d := ConvertUSDAFood(gjson.Parse(detailsFood))
	assert.Equal(t, 166.0, d.Calories)
	assert.Equal(t, 14.3, d.Carbs)
	assert.Equal(t, 6.0, d.Fiber)
	assert.Equal(t, 0.3, d.Sugar)
	assert.Equal(t, 379.0, d.Sodium)
	assert.Equal(t, "30g", d.ServingSize)

	byName := ConvertUSDAFood(gjson.Parse(`{"foodNutrients":[{"nutrientName":"Protein","value":4}]}`))
	assert.Equal(t, "Unknown Food", byName.Name)
	assert.Equal(t, 4.0, byName.Protein)
}

func TestUSDASearchAndGetNutrition(t *testing.T) {
	srv, st := newFDCStub(t)
	usda := NewUSDAService(srv.URL+"/", "test-key", 5*time.Second, nopLog)
	ctx := context.Background()

	m, err := usda.SearchAndGetNutrition(ctx, "rice")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 130.0, m.Nutrition.Calories)
	assert.Zero(t, st.details)
	assert.Equal(t, int64(171287), gjson.GetBytes(m.Raw, "fdcId").Int())

	m, err = usda.SearchAndGetNutrition(ctx, "hummus")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 1, st.details)
	assert.Equal(t, "Hummus, commercial", m.Nutrition.Name)
	assert.Equal(t, 166.0, m.Nutrition.Calories)

	m, err = usda.SearchAndGetNutrition(ctx, "unobtainium")
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = usda.SearchAndGetNutrition(ctx, "broken")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "USDA API error: 500 boom", err.Error())
}

func TestUSDAErrors(t *testing.T) {
	srv, _ := newFDCStub(t)
	ctx := context.Background()

	_, err := NewUSDAService(srv.URL, "", time.Second, nopLog).SearchFoods(ctx, "rice", 5)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "API key not configured")

	_, err = NewUSDAService(srv.URL, "wrong", time.Second, nopLog).SearchFoods(ctx, "rice", 5)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "USDA API error: 403 An invalid api_key was supplied", err.Error())

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, err = NewUSDAService(dead.URL, "test-key", time.Second, nopLog).GetFoodDetails(ctx, 1)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.False(t, strings.Contains(err.Error(), "test-key"))
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = value
	c.sets++
	return nil
}

type fakeDetector struct {
	labels []string
	err    error
}

func (d fakeDetector) DetectLabels(context.Context, string) ([]string, error) {
	return d.labels, d.err
}

func TestFoodAnalysisFullPipeline(t *testing.T) {
	srv, st := newFDCStub(t)
	cache := &memCache{}
	svc := NewFoodAnalysisService(NewUSDAService(srv.URL, "test-key", time.Second, nopLog), nil, cache, time.Hour, nopLog)
	ctx := context.Background()

	_, err := svc.FullPipeline(ctx, PipelineInput{DishName: " r "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Dish name must be at least 2 characters", err.Error())

	res, err := svc.FullPipeline(ctx, PipelineInput{DishName: "rice", DietTypes: []string{"vegan"}})
	require.NoError(t, err)
	assert.Equal(t, "usda", res.Source)
	assert.Equal(t, "Rice, white, cooked", res.FoodName)
	assert.Equal(t, 130.0, res.TotalCalories)
	assert.Equal(t, 2.7, res.Macronutrients.Protein)
	require.Len(t, res.Nutrients, 3)
	assert.Equal(t, NutrientAmount{Name: "Sodium", Value: 1, Unit: "mg"}, res.Nutrients[2])
	assert.Equal(t, "100g", res.Ingredients[0].Unit)
	assert.Empty(t, res.Allergens)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, int64(171287), gjson.GetBytes(b, "_usdaData.fdcId").Int())
	assert.True(t, gjson.GetBytes(b, "dietCompatibility").IsObject())

	// second call is served from cache
	again, err := svc.FullPipeline(ctx, PipelineInput{DishName: "RICE"})
	require.NoError(t, err)
	assert.Equal(t, res.TotalCalories, again.TotalCalories)
	assert.Len(t, st.searches, 1)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.FullPipeline(ctx, PipelineInput{DishName: "unobtainium"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "No nutrition data found in USDA API for: unobtainium", err.Error())
}

func TestFoodAnalysisSearch(t *testing.T) {
	srv, _ := newFDCStub(t)
	svc := NewFoodAnalysisService(NewUSDAService(srv.URL, "test-key", time.Second, nopLog), nil, nil, 0, nopLog)

	_, err := svc.Search(context.Background(), "r", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	hits, err := svc.Search(context.Background(), "rice", 500)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 130.0, hits[0].Calories)

	hits, err = svc.Search(context.Background(), "nothing here", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFoodAnalysisRecognize(t *testing.T) {
	srv, st := newFDCStub(t)
	usda := NewUSDAService(srv.URL, "test-key", time.Second, nopLog)
	ctx := context.Background()

	_, err := NewFoodAnalysisService(usda, nil, nil, 0, nopLog).Recognize(ctx, "data:image/png;base64,AA==")
	assert.ErrorIs(t, err, ErrNotConfigured)

	svc := NewFoodAnalysisService(usda, fakeDetector{labels: []string{"Plate", "hummus", "rice"}}, nil, 0, nopLog)
	res, err := svc.Recognize(ctx, "data:image/png;base64,AA==")
	require.NoError(t, err)
	assert.Equal(t, "hummus", res.Matched)
	assert.Equal(t, []string{"Plate", "hummus", "rice"}, res.Analysis.Labels)
	assert.Equal(t, 166.0, res.Analysis.TotalCalories)
	assert.Equal(t, []string{"Plate", "hummus"}, st.searches)

	empty := NewFoodAnalysisService(usda, fakeDetector{}, nil, 0, nopLog)
	_, err = empty.Recognize(ctx, "data:image/png;base64,AA==")
	assert.ErrorIs(t, err, ErrNotFound)

	failing := NewFoodAnalysisService(usda, fakeDetector{err: assert.AnError}, nil, 0, nopLog)
	_, err = failing.Recognize(ctx, "data:image/png;base64,AA==")
	assert.ErrorIs(t, err, ErrUpstream)
}
