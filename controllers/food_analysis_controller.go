package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type FoodAnalysisController struct {
	Svc *services.FoodAnalysisService
}

func NewFoodAnalysisController(svc *services.FoodAnalysisService) *FoodAnalysisController {
	return &FoodAnalysisController{Svc: svc}
}

// POST /food-analysis/full-pipeline  { "dishName": "kabsa", "dietTypes": ["halal"] }
func (h *FoodAnalysisController) FullPipeline(c *gin.Context) {
	var input services.PipelineInput
	if err := c.ShouldBindJSON(&input); err != nil || input.DishName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dishName is required in request body"})
		return
	}
	res, err := h.Svc.FullPipeline(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /food-analysis/search?query=rice&pageSize=10
func (h *FoodAnalysisController) Search(c *gin.Context) {
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("query"), queryInt(c, "pageSize"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": hits, "count": len(hits)})
}

// POST /food-analysis/recognize  { "image_base64": "data:image/jpeg;base64,..." }
func (h *FoodAnalysisController) Recognize(c *gin.Context) {
	var input services.RecognizeInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := h.Svc.Recognize(c.Request.Context(), input.ImageBase64)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
