package controllers

import (
	"net/http"
	"strconv"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type MealPlanController struct {
	Svc *services.MealPlanService
}

func NewMealPlanController(svc *services.MealPlanService) *MealPlanController {
	return &MealPlanController{Svc: svc}
}

func (h *MealPlanController) List(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	plans, err := h.Svc.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *MealPlanController) Get(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanController) Create(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.MealPlanInput
	if !bindJSON(c, &input) {
		return
	}
	plan, err := h.Svc.Create(c.Request.Context(), uid, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *MealPlanController) Update(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input services.MealPlanInput
	if !bindJSON(c, &input) {
		return
	}
	plan, err := h.Svc.Update(c.Request.Context(), uid, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanController) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /meal-plans/:id/summary
func (h *MealPlanController) Summary(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sum, err := h.Svc.Summary(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// GET /meal-plans/:id/foods?day=0..6&type=breakfast
func (h *MealPlanController) MealFoods(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var f services.MealFoodFilter
	if raw := c.Query("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be between 0 and 6"})
			return
		}
		f.Day = &day
	}
	f.MealType = c.Query("type")

	foods, err := h.Svc.MealFoods(c.Request.Context(), uid, id, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

// POST /meal-plans/:id/foods
func (h *MealPlanController) AddMealFood(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input services.MealFoodInput
	if !bindJSON(c, &input) {
		return
	}
	mf, err := h.Svc.AddMealFood(c.Request.Context(), uid, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mf)
}

// DELETE /meal-plans/:id/foods/:mealFoodId
func (h *MealPlanController) RemoveMealFood(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	mfID, ok := uuidParam(c, "mealFoodId")
	if !ok {
		return
	}
	if err := h.Svc.RemoveMealFood(c.Request.Context(), uid, id, mfID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /meal-plans/:id/foods/:mealFoodId/consumed  { "consumed": true }
func (h *MealPlanController) SetConsumed(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	mfID, ok := uuidParam(c, "mealFoodId")
	if !ok {
		return
	}
	var input struct {
		Consumed *bool `json:"consumed" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	mf, err := h.Svc.SetConsumed(c.Request.Context(), uid, id, mfID, *input.Consumed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mf)
}
