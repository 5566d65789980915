package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Foods    *services.FoodService
	Stores   *services.StoreService
	Feedback *services.FeedbackService
}

func NewFoodController(foods *services.FoodService, stores *services.StoreService, feedback *services.FeedbackService) *FoodController {
	return &FoodController{Foods: foods, Stores: stores, Feedback: feedback}
}

// GET /foods?category=&q=&tag=&exclude_allergens=a,b&safe_for_me=true&page=&limit=
func (h *FoodController) List(c *gin.Context) {
	f := services.FoodFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Tag:      c.Query("tag"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}
	if raw := c.Query("exclude_allergens"); raw != "" {
		f.ExcludeAllergens = strings.Split(raw, ",")
	}
	if c.Query("safe_for_me") == "true" {
		uid, ok := currentUser(c)
		if !ok {
			return
		}
		f.SafeFor = &uid
	}

	page, err := h.Foods.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /foods/:id
func (h *FoodController) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	food, err := h.Foods.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// POST /foods
func (h *FoodController) Create(c *gin.Context) {
	var input services.FoodInput
	if !bindJSON(c, &input) {
		return
	}
	food, err := h.Foods.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

// PUT /foods/:id
func (h *FoodController) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input services.FoodInput
	if !bindJSON(c, &input) {
		return
	}
	food, err := h.Foods.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// DELETE /foods/:id
func (h *FoodController) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Foods.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /foods/:id/nutrition?serving=150
func (h *FoodController) Nutrition(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	grams, err := strconv.ParseFloat(c.DefaultQuery("serving", "100"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serving must be a number of grams"})
		return
	}
	out, err := h.Foods.Nutrition(c.Request.Context(), id, grams)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /foods/:id/safety
func (h *FoodController) Safety(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Foods.Safety(c.Request.Context(), id, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /foods/:id/prices
func (h *FoodController) Prices(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.Foods.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	out, err := h.Stores.ComparePrices(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /foods/:id/feedback
func (h *FoodController) FeedbackForFood(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Feedback.ForFood(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
